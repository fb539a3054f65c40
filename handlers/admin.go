package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lemon16/models"
	"lemon16/stats"
	"lemon16/store"
)

// GetUser returns one user document by Telegram id.
func GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := deps.Users.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user details"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ResetSwipes restores the daily allowance for every free user.
func ResetSwipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := deps.Users.ResetFreeSwipes(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to reset swipes"})
		return
	}

	refresh(ctx)
	logAction(ctx, "Admin", "Reset swipes for free users")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Swipes reset for free users"})
}

// BanUser toggles the ban flag. Newly banned users are told about it.
func BanUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := deps.Users.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ban/unban user"})
		return
	}

	banned := !user.IsBanned
	if err := deps.Users.SetBanned(ctx, userID, banned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ban/unban user"})
		return
	}

	if banned {
		notify(userID, "🚫 You've been banned from Lemon16.")
	}

	refresh(ctx)
	action := "Unbanned"
	message := "User unbanned"
	if banned {
		action = "Banned"
		message = "User banned"
	}
	logAction(ctx, strconv.FormatInt(userID, 10), action)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// DeleteUser notifies the user, then hard-deletes the document.
func DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := deps.Users.Get(ctx, userID); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	notify(userID, "🗑️ Your Lemon16 account has been deleted.")

	if err := deps.Users.Delete(ctx, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	refresh(ctx)
	logAction(ctx, strconv.FormatInt(userID, 10), "Deleted")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}

// TogglePremium flips the subscription: granting it sets a 30-day expiry and
// an effectively-unlimited allowance, removing it clears the expiry and
// restores the free allowance.
func TogglePremium(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := deps.Users.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle premium"})
		return
	}

	subscribed := !user.IsSubscribed
	var expiry *time.Time
	swipes := models.DefaultSwipeCount
	if subscribed {
		t := time.Now().Add(30 * 24 * time.Hour)
		expiry = &t
		swipes = models.PremiumSwipeCount
	}

	if err := deps.Users.SetSubscription(ctx, userID, subscribed, expiry, swipes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle premium"})
		return
	}

	if subscribed {
		notify(userID, "🎉 You're now a Premium member!")
	} else {
		notify(userID, "💔 Your Premium status was removed.")
	}

	refresh(ctx)
	action := "Removed Premium"
	message := "Premium removed"
	if subscribed {
		action = "Made Premium"
		message = "User made premium"
	}
	logAction(ctx, strconv.FormatInt(userID, 10), action)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

type editUserRequest struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	SwipeCount int    `json:"swipeCount"`
}

// EditUser applies a partial name/age/swipeCount update. Zero values leave
// the existing field untouched.
func EditUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req editUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	edits := store.Edits{}
	if req.Name != "" {
		edits.Name = &req.Name
	}
	if req.Age != 0 {
		edits.Age = &req.Age
	}
	if req.SwipeCount != 0 {
		edits.SwipeCount = &req.SwipeCount
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := deps.Users.ApplyEdits(ctx, userID, edits); errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit user"})
		return
	}

	notify(userID, "✨ Your profile was updated by an admin!")

	refresh(ctx)
	logAction(ctx, strconv.FormatInt(userID, 10), "Profile edited")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated"})
}

// MessageInactive broadcasts a re-engagement message to everyone who has not
// swiped in 30 days.
func MessageInactive(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inactive, err := deps.Users.Inactive(ctx, time.Now().Add(-stats.InactiveAfter))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to message inactive users"})
		return
	}

	for _, user := range inactive {
		notify(user.UserID, "🌟 Miss us? Come back to Lemon16 for fun matches and exciting updates!")
		logAction(ctx, strconv.FormatInt(user.UserID, 10), "Sent inactive user message")
	}

	refresh(ctx)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Sent messages to %d inactive users", len(inactive)),
	})
}

// DeleteInactive notifies and hard-deletes everyone who has not swiped in
// 30 days.
func DeleteInactive(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inactive, err := deps.Users.Inactive(ctx, time.Now().Add(-stats.InactiveAfter))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inactive users"})
		return
	}

	for _, user := range inactive {
		notify(user.UserID, "🗑️ Your Lemon16 account was deleted due to inactivity.")
		if err := deps.Users.Delete(ctx, user.UserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inactive users"})
			return
		}
		logAction(ctx, strconv.FormatInt(user.UserID, 10), "Deleted due to inactivity")
	}

	refresh(ctx)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Deleted %d inactive users", len(inactive)),
	})
}
