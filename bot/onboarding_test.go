package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lemon16/models"
)

func TestOnboardingHappyPath(t *testing.T) {
	sess := &models.Session{UserID: 1, Stage: models.StageName}

	prompt := advanceOnboarding(sess, "Alice")
	assert.Contains(t, prompt, "Alice")
	assert.Equal(t, models.StageAge, sess.Stage)

	prompt = advanceOnboarding(sess, "24")
	assert.Equal(t, promptGender, prompt)
	assert.Equal(t, 24, sess.Age)
	assert.Equal(t, models.StageGender, sess.Stage)

	prompt, ok := applyGender(sess, models.GenderFemale)
	require.True(t, ok)
	assert.Equal(t, promptLocation, prompt)
	assert.Equal(t, models.StageLocation, sess.Stage)

	prompt = advanceOnboarding(sess, "Lagos")
	assert.Equal(t, promptInterests, prompt)
	assert.Equal(t, "Lagos", sess.Location)

	prompt = advanceOnboarding(sess, "dancing, travel")
	assert.Equal(t, promptInterestedIn, prompt)
	assert.Equal(t, "dancing, travel", sess.Interests)

	prompt, ok = applyInterest(sess, "men")
	require.True(t, ok)
	assert.Equal(t, promptPhoto, prompt)
	assert.Equal(t, models.GenderMale, sess.InterestedIn)
	assert.Equal(t, models.StagePhoto, sess.Stage)
}

func TestOnboardingRejectsUnderage(t *testing.T) {
	sess := &models.Session{UserID: 1, Stage: models.StageAge, Name: "Bob"}

	prompt := advanceOnboarding(sess, "17")
	assert.Equal(t, promptAgeInvalid, prompt)
	assert.Equal(t, models.StageAge, sess.Stage)

	prompt = advanceOnboarding(sess, "not a number")
	assert.Equal(t, promptAgeInvalid, prompt)
	assert.Equal(t, models.StageAge, sess.Stage)

	prompt = advanceOnboarding(sess, "18")
	assert.Equal(t, promptGender, prompt)
	assert.Equal(t, 18, sess.Age)
}

func TestOnboardingButtonStagesIgnoreText(t *testing.T) {
	sess := &models.Session{UserID: 1, Stage: models.StageGender}
	assert.Equal(t, promptUseButtons, advanceOnboarding(sess, "male"))
	assert.Equal(t, models.StageGender, sess.Stage)

	sess.Stage = models.StageInterestedIn
	assert.Equal(t, promptUseButtons, advanceOnboarding(sess, "women"))
	assert.Equal(t, models.StageInterestedIn, sess.Stage)
}

func TestApplyGenderOutOfStage(t *testing.T) {
	sess := &models.Session{UserID: 1, Stage: models.StageName}
	_, ok := applyGender(sess, models.GenderMale)
	assert.False(t, ok)
	assert.Equal(t, models.StageName, sess.Stage)
}

func TestApplyGenderRejectsUnknownValue(t *testing.T) {
	sess := &models.Session{UserID: 1, Stage: models.StageGender}
	_, ok := applyGender(sess, "robot")
	assert.False(t, ok)
	assert.Equal(t, models.StageGender, sess.Stage)
}

func TestApplyInterestNormalizesVocabulary(t *testing.T) {
	cases := map[string]string{
		"men":      models.GenderMale,
		"women":    models.GenderFemale,
		"everyone": models.InterestedInEveryone,
	}
	for code, want := range cases {
		sess := &models.Session{UserID: 1, Stage: models.StageInterestedIn}
		_, ok := applyInterest(sess, code)
		require.True(t, ok, code)
		assert.Equal(t, want, sess.InterestedIn)
	}
}

func TestApplyInterestRejectsUnknownCode(t *testing.T) {
	sess := &models.Session{UserID: 1, Stage: models.StageInterestedIn}
	_, ok := applyInterest(sess, "aliens")
	assert.False(t, ok)
	assert.Equal(t, models.StageInterestedIn, sess.Stage)
}

func TestOnboardingPhotoStagePromptsForPhoto(t *testing.T) {
	sess := &models.Session{UserID: 1, Stage: models.StagePhoto}
	assert.Equal(t, promptPhoto, advanceOnboarding(sess, "here you go"))
	assert.Equal(t, models.StagePhoto, sess.Stage)
}
