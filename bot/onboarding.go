package bot

import (
	"fmt"
	"strconv"
	"strings"

	"lemon16/models"
)

// Onboarding prompts, one per stage transition.
const (
	promptWelcome = "👋 Welcome to Lemon16 Dating App 🍑\n\n" +
		"Meet classy, wealthy, and influential people 🌍. Chat 💬, Flirt 😍, Connect 💖...\n\n" +
		"Let's get you set up! 🚀\n\n" +
		"What's your name? 😉"
	promptAgeInvalid   = "❌ Oh, honey… that doesn't look right. Age must be 18+! 😉"
	promptGender       = "Got it! What's your gender, Love?"
	promptLocation     = "📍 Hot! Where are you looking to find some fun? (your location 📍) 😘"
	promptInterests    = "Tell me what turns you on… What are your interests? 🔥"
	promptInterestedIn = "Who are you craving today? 😏"
	promptPhoto        = "📸 Let's see that cute profile pic! Show them what they're missing. 😘"
	promptUseButtons   = "😉 Use the buttons above to answer!"
)

// advanceOnboarding consumes one text answer and moves the session to the
// next stage, returning the next prompt. Invalid input keeps the session
// where it is and returns a correction prompt.
func advanceOnboarding(sess *models.Session, input string) string {
	input = strings.TrimSpace(input)

	switch sess.Stage {
	case models.StageName:
		sess.Name = input
		sess.Stage = models.StageAge
		return fmt.Sprintf("Mmm, %s... I like it. 😏 Now, tell me your age? (18+ only! 🔥)", sess.Name)

	case models.StageAge:
		age, err := strconv.Atoi(input)
		if err != nil || age < 18 {
			return promptAgeInvalid
		}
		sess.Age = age
		sess.Stage = models.StageGender
		return promptGender

	case models.StageLocation:
		sess.Location = input
		sess.Stage = models.StageInterests
		return promptInterests

	case models.StageInterests:
		sess.Interests = input
		sess.Stage = models.StageInterestedIn
		return promptInterestedIn

	case models.StageGender, models.StageInterestedIn:
		return promptUseButtons

	case models.StagePhoto:
		return promptPhoto
	}
	return promptUseButtons
}

// applyGender records the gender picked via inline button and moves on to
// the location question. Picks outside the gender stage are ignored.
func applyGender(sess *models.Session, gender string) (string, bool) {
	if sess.Stage != models.StageGender {
		return "", false
	}
	switch gender {
	case models.GenderMale, models.GenderFemale, models.GenderOther:
	default:
		return "", false
	}
	sess.Gender = gender
	sess.Stage = models.StageLocation
	return promptLocation, true
}

// applyInterest records who the user wants to see. Button payloads use the
// original menu vocabulary (men/women/everyone) and are normalized to the
// gender vocabulary so preference matching is a direct comparison.
func applyInterest(sess *models.Session, code string) (string, bool) {
	if sess.Stage != models.StageInterestedIn {
		return "", false
	}
	switch code {
	case "men":
		sess.InterestedIn = models.GenderMale
	case "women":
		sess.InterestedIn = models.GenderFemale
	case "everyone":
		sess.InterestedIn = models.InterestedInEveryone
	default:
		return "", false
	}
	sess.Stage = models.StagePhoto
	return promptPhoto, true
}
