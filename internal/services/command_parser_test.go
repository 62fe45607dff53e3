package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  CommandKind
		args  []string
	}{
		{"bare status", "status", CmdStatus, []string{""}},
		{"status with plant", "status myplant", CmdStatus, []string{"myplant"}},
		{"status multiword plant", "status white widow", CmdStatus, []string{"white widow"}},
		{"water", "water myplant", CmdWater, []string{"myplant"}},
		{"note with colon", "note myplant: looking healthy today", CmdNote, []string{"myplant", "looking healthy today"}},
		{"note colon no space", "note myplant:topped it", CmdNote, []string{"myplant", "topped it"}},
		{"list", "list", CmdList, nil},
		{"help", "help", CmdHelp, nil},
		{"ph decimal", "ph myplant 6.5", CmdPH, []string{"myplant", "6.5"}},
		{"ph integer", "ph myplant 7", CmdPH, []string{"myplant", "7"}},
		{"public", "public", CmdPublic, nil},
		{"follow", "follow 42", CmdFollow, []string{"42"}},
		{"follow non-numeric is unknown", "follow myplant", CmdUnknown, nil},
		{"unfollow", "unfollow 42", CmdUnfollow, []string{"42"}},
		{"following", "following", CmdFollowing, nil},
		{"stage", "stage myplant flowering", CmdStage, []string{"myplant", "flowering"}},
		{"data", "data myplant temp=25,humidity=60", CmdData, []string{"myplant", "temp=25,humidity=60"}},
		{"recommend", "recommend myplant", CmdRecommend, []string{"myplant"}},
		{"strain", "strain white widow", CmdStrain, []string{"white widow"}},
		{"rate without review", "rate white widow 5", CmdRate, []string{"white widow", "5", ""}},
		{"rate with review", "rate white widow 4 easy grow", CmdRate, []string{"white widow", "4", "easy grow"}},
		{"tip", "tip gelato flowering keep humidity low", CmdTip, []string{"gelato", "flowering", "keep humidity low"}},
		{"tips strain only", "tips white widow", CmdTips, []string{"white", "widow"}},
		{"achievements", "achievements", CmdAchievements, nil},
		{"bare stats", "stats", CmdStats, []string{""}},
		{"stats with plant", "stats myplant", CmdStats, []string{"myplant"}},
		{"uppercase input normalized", "  WATER MyPlant  ", CmdWater, []string{"myplant"}},
		{"gibberish", "make me a sandwich", CmdUnknown, nil},
		{"empty", "", CmdUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			assert.Equal(t, tt.kind, cmd.Kind)
			if tt.args != nil {
				assert.Equal(t, tt.args, cmd.Args)
			}
		})
	}
}

func TestIsVerificationCode(t *testing.T) {
	assert.True(t, isVerificationCode("123456"))
	assert.False(t, isVerificationCode("12345"))
	assert.False(t, isVerificationCode("1234567"))
	assert.False(t, isVerificationCode("12345a"))
	assert.False(t, isVerificationCode("status"))
}
