// Package bot runs the Telegram side of Lemon16: onboarding new users,
// serving the swipe deck and relaying match notifications.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"lemon16/matchmaking"
	"lemon16/models"
	"lemon16/store"
)

const (
	bannedText       = "🚫 You've been banned from Lemon16."
	storeWakingText  = "⏳ Whoops! Our database is still waking up. Try again in a sec! ☕"
	outOfSwipesText  = "🔒 Out of swipes! Upgrade for unlimited fun!"
	dislikedText     = "👎 Disliked! Next match?"
	noCandidatesText = "😢 No new matches right now. Check back later!"
	helpText         = "💡 Need help? Contact us at: support@lemon16.com"
)

const handleTimeout = 10 * time.Second

type Bot struct {
	*Notifier

	api        *tgbotapi.BotAPI
	users      store.Users
	sessions   store.Sessions
	matcher    *matchmaking.Service
	premiumURL string
}

func New(api *tgbotapi.BotAPI, users store.Users, sessions store.Sessions, matcher *matchmaking.Service, premiumURL string) *Bot {
	return &Bot{
		Notifier:   NewNotifier(api),
		api:        api,
		users:      users,
		sessions:   sessions,
		matcher:    matcher,
		premiumURL: premiumURL,
	}
}

// Run consumes the long-poll update channel until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.Info().Str("username", b.api.Self.UserName).Msg("bot polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	user, err := b.users.Get(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Int64("userId", userID).Msg("user lookup failed")
		b.reply(userID, storeWakingText)
		return
	}
	if user != nil && user.IsBanned {
		b.reply(userID, bannedText)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// A registered user talks through the reply keyboard. A photo from a
	// registered user replaces their profile pic.
	if user != nil {
		if len(msg.Photo) > 0 {
			fileID := msg.Photo[len(msg.Photo)-1].FileID
			if err := b.users.SetProfilePic(ctx, userID, fileID); err != nil {
				log.Error().Err(err).Int64("userId", userID).Msg("profile pic update failed")
				b.reply(userID, storeWakingText)
				return
			}
			b.reply(userID, "📸 Looking good! Profile pic updated. 😘")
			return
		}
		b.handleMenu(ctx, msg, user)
		return
	}

	sess, err := b.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			b.reply(userID, "Hey! 👋 Type /start to set up your profile. 😉")
			return
		}
		log.Error().Err(err).Int64("userId", userID).Msg("session lookup failed")
		b.reply(userID, storeWakingText)
		return
	}

	if sess.Stage == models.StagePhoto && len(msg.Photo) > 0 {
		b.completeOnboarding(ctx, msg, sess)
		return
	}

	prompt := advanceOnboarding(sess, msg.Text)
	if err := b.sessions.Put(ctx, sess); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("session save failed")
		b.reply(userID, storeWakingText)
		return
	}

	switch sess.Stage {
	case models.StageGender:
		b.sendGenderKeyboard(userID, prompt)
	case models.StageInterestedIn:
		b.sendInterestKeyboard(userID, prompt)
	default:
		b.reply(userID, prompt)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		if user != nil {
			b.sendProfilePreview(user)
			return
		}
		sess := &models.Session{UserID: userID, Stage: models.StageName}
		if err := b.sessions.Put(ctx, sess); err != nil {
			log.Error().Err(err).Int64("userId", userID).Msg("session save failed")
			b.reply(userID, storeWakingText)
			return
		}
		b.reply(userID, promptWelcome)

	case "profile":
		if user == nil {
			b.reply(userID, "You don't have a profile yet. Type /start to create one! 😉")
			return
		}
		b.sendProfilePreview(user)

	case "matches":
		if user == nil {
			b.reply(userID, "You don't have a profile yet. Type /start to create one! 😉")
			return
		}
		b.sendMatches(ctx, user)

	case "help":
		b.reply(userID, helpText)

	default:
		b.reply(userID, "🤔 I don't know that one. Try /start, /profile, /matches or /help.")
	}
}

// handleMenu dispatches reply-keyboard button presses from registered users.
func (b *Bot) handleMenu(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	switch strings.TrimSpace(msg.Text) {
	case "🔍 Find Match":
		b.sendNextCandidate(ctx, user.UserID)
	case "🔍 Profile":
		b.sendProfilePreview(user)
	case "💘 Matches":
		b.sendMatches(ctx, user)
	case "💡 Help":
		b.reply(user.UserID, helpText)
	default:
		b.sendMainMenu(user.UserID, "😏 Pick something from the menu below!")
	}
}

// completeOnboarding turns the finished session into a user document. The
// largest photo size is kept as the profile pic.
func (b *Bot) completeOnboarding(ctx context.Context, msg *tgbotapi.Message, sess *models.Session) {
	userID := msg.From.ID
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	user := &models.User{
		UserID:        userID,
		Username:      msg.From.UserName,
		Name:          sess.Name,
		Age:           sess.Age,
		Gender:        sess.Gender,
		Location:      sess.Location,
		Interests:     sess.Interests,
		InterestedIn:  sess.InterestedIn,
		ProfilePic:    fileID,
		SwipeCount:    models.DefaultSwipeCount,
		LikedUsers:    []int64{},
		DislikedUsers: []int64{},
		JoinDate:      time.Now(),
	}
	if err := b.users.Insert(ctx, user); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("user insert failed")
		b.reply(userID, storeWakingText)
		return
	}
	if err := b.sessions.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Int64("userId", userID).Msg("session cleanup failed")
	}

	b.sendMainMenu(userID, "🎉 You're all set! What would you like to do?")
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	data := cb.Data

	// Acknowledge first so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Warn().Err(err).Msg("callback ack failed")
	}

	// Inline buttons outlive a ban, so the refusal happens here as well as
	// on the message path.
	user, err := b.users.Get(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Int64("userId", userID).Msg("user lookup failed")
		b.reply(userID, storeWakingText)
		return
	}
	if user != nil && user.IsBanned {
		b.reply(userID, bannedText)
		return
	}

	switch {
	case strings.HasPrefix(data, "gender_"):
		b.handleGenderPick(ctx, userID, strings.TrimPrefix(data, "gender_"))
	case strings.HasPrefix(data, "interest_"):
		b.handleInterestPick(ctx, userID, strings.TrimPrefix(data, "interest_"))
	case strings.HasPrefix(data, "like_"):
		b.handleLike(ctx, userID, strings.TrimPrefix(data, "like_"))
	case strings.HasPrefix(data, "dislike_"):
		b.handleDislike(ctx, userID, strings.TrimPrefix(data, "dislike_"))
	case data == "find_match":
		b.sendNextCandidate(ctx, userID)
	case data == "change_image":
		b.handleChangeImage(userID)
	}
}

func (b *Bot) handleGenderPick(ctx context.Context, userID int64, gender string) {
	sess, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return
	}
	prompt, ok := applyGender(sess, gender)
	if !ok {
		return
	}
	if err := b.sessions.Put(ctx, sess); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("session save failed")
		b.reply(userID, storeWakingText)
		return
	}
	b.reply(userID, prompt)
}

func (b *Bot) handleInterestPick(ctx context.Context, userID int64, code string) {
	sess, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return
	}
	prompt, ok := applyInterest(sess, code)
	if !ok {
		return
	}
	if err := b.sessions.Put(ctx, sess); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("session save failed")
		b.reply(userID, storeWakingText)
		return
	}
	b.reply(userID, prompt)
}

func (b *Bot) handleLike(ctx context.Context, userID int64, rawTarget string) {
	targetID, err := strconv.ParseInt(rawTarget, 10, 64)
	if err != nil {
		return
	}

	_, err = b.matcher.Like(ctx, userID, targetID)
	switch {
	case errors.Is(err, store.ErrOutOfSwipes):
		if err := b.SendTextWithURLButton(userID, outOfSwipesText, "💎 Upgrade Now", b.premiumURL); err != nil {
			log.Error().Err(err).Int64("userId", userID).Msg("send failed")
		}
		return
	case errors.Is(err, store.ErrAlreadySwiped), errors.Is(err, store.ErrSelfSwipe):
		// Stale or forged card, just move the user along.
	case err != nil:
		log.Error().Err(err).Int64("userId", userID).Msg("like failed")
		b.reply(userID, storeWakingText)
		return
	}

	b.sendFindPrompt(userID, "🔍 Next match?")
}

func (b *Bot) handleDislike(ctx context.Context, userID int64, rawTarget string) {
	targetID, err := strconv.ParseInt(rawTarget, 10, 64)
	if err != nil {
		return
	}
	err = b.matcher.Dislike(ctx, userID, targetID)
	if err != nil && !errors.Is(err, store.ErrAlreadySwiped) && !errors.Is(err, store.ErrSelfSwipe) {
		log.Error().Err(err).Int64("userId", userID).Msg("dislike failed")
		b.reply(userID, storeWakingText)
		return
	}
	b.sendFindPrompt(userID, dislikedText)
}

// sendFindPrompt nudges the user towards the next card.
func (b *Bot) sendFindPrompt(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Find Matches", "find_match"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("send failed")
	}
}

// handleChangeImage reopens just the photo step. The next photo the user
// sends replaces their profile pic.
func (b *Bot) handleChangeImage(userID int64) {
	b.reply(userID, "📸 Please upload a new profile picture!")
}

// sendNextCandidate shows one profile card with like/dislike buttons.
func (b *Bot) sendNextCandidate(ctx context.Context, userID int64) {
	candidate, err := b.matcher.FindCandidate(ctx, userID)
	if err != nil {
		if errors.Is(err, matchmaking.ErrNoCandidates) {
			b.reply(userID, noCandidatesText)
			return
		}
		log.Error().Err(err).Int64("userId", userID).Msg("candidate lookup failed")
		b.reply(userID, storeWakingText)
		return
	}

	caption := fmt.Sprintf("💘 Match Found:\n📛 Name: %s\n🎂 Age: %d\n📍 Location: %s\n💡 Turn-ons: %s",
		candidate.Name, candidate.Age, candidate.Location, candidate.Interests)

	photo := tgbotapi.NewPhoto(userID, tgbotapi.FileID(candidate.ProfilePic))
	photo.Caption = caption
	photo.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💚 Like", fmt.Sprintf("like_%d", candidate.UserID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Dislike", fmt.Sprintf("dislike_%d", candidate.UserID)),
		),
	)
	if _, err := b.api.Send(photo); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("candidate card send failed")
	}
}

// sendProfilePreview shows the user their own card.
func (b *Bot) sendProfilePreview(user *models.User) {
	status := "Free (Upgrade for more!)"
	if user.IsSubscribed {
		status = "Premium ✨"
	}
	caption := fmt.Sprintf("🔥 Your Profile:\n\n📛 Name: %s\n🎂 Age: %d\n⚧ Gender: %s\n📍 Location: %s\n💡 Turn-ons: %s\n💘 Looking For: %s\n💎 Status: %s",
		user.Name, user.Age, user.Gender, user.Location, user.Interests, user.InterestedIn, status)

	photo := tgbotapi.NewPhoto(user.UserID, tgbotapi.FileID(user.ProfilePic))
	photo.Caption = caption
	photo.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📸 Change Image", "change_image"),
			tgbotapi.NewInlineKeyboardButtonData("🔍 Find Matches", "find_match"),
		),
	)
	if _, err := b.api.Send(photo); err != nil {
		log.Error().Err(err).Int64("userId", user.UserID).Msg("profile send failed")
	}
}

// sendMatches lists mutual likes. Free users see the count and an upgrade
// prompt instead of usernames.
func (b *Bot) sendMatches(ctx context.Context, user *models.User) {
	matches, err := b.matcher.Matches(ctx, user.UserID)
	if err != nil {
		log.Error().Err(err).Int64("userId", user.UserID).Msg("matches lookup failed")
		b.reply(user.UserID, storeWakingText)
		return
	}
	if len(matches) == 0 {
		b.reply(user.UserID, "💔 No matches yet. Keep swiping! 🔥")
		return
	}

	if !user.IsSubscribed {
		text := fmt.Sprintf("💘 You have %d match(es)! Upgrade to premium to see who they are and start chatting! 😏", len(matches))
		if err := b.SendTextWithURLButton(user.UserID, text, "💎 Upgrade Now", b.premiumURL); err != nil {
			log.Error().Err(err).Int64("userId", user.UserID).Msg("send failed")
		}
		return
	}

	var sb strings.Builder
	sb.WriteString("💘 Your Matches:\n")
	for i, m := range matches {
		fmt.Fprintf(&sb, "%d. @%s - %s\n", i+1, m.Username, m.Name)
	}
	b.reply(user.UserID, sb.String())
}

func (b *Bot) sendGenderKeyboard(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚹 Male", "gender_male"),
			tgbotapi.NewInlineKeyboardButtonData("🚺 Female", "gender_female"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚧ Other", "gender_other"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("send failed")
	}
}

func (b *Bot) sendInterestKeyboard(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Men", "interest_men"),
			tgbotapi.NewInlineKeyboardButtonData("Women", "interest_women"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Everyone", "interest_everyone"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("send failed")
	}
}

// sendMainMenu shows the persistent reply keyboard, followed by the premium
// deep link. Telegram allows one reply markup per message, so the inline
// button rides on its own message.
func (b *Bot) sendMainMenu(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔍 Profile"),
			tgbotapi.NewKeyboardButton("💘 Matches"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("💡 Help"),
			tgbotapi.NewKeyboardButton("🔍 Find Match"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("send failed")
	}
	if err := b.SendTextWithURLButton(userID, "💎 Unlock unlimited swipes and chat!", "💎 Premium", b.premiumURL); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("send failed")
	}
}

func (b *Bot) reply(userID int64, text string) {
	if err := b.SendText(userID, text); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("send failed")
	}
}
