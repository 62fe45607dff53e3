package services

import (
	"regexp"
	"strings"
)

// CommandKind enumerates the closed set of text commands. The parser produces
// exactly one kind per input; dispatch is an exhaustive switch, so an
// unhandled kind is a compile-time visible gap rather than a runtime miss.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdStatus
	CmdWater
	CmdNote
	CmdList
	CmdHelp
	CmdPH
	CmdPublic
	CmdFollow
	CmdUnfollow
	CmdFollowing
	CmdStage
	CmdData
	CmdRecommend
	CmdStrain
	CmdRate
	CmdTip
	CmdTips
	CmdAchievements
	CmdStats
)

// Command is one parsed text command. Args holds the capture groups of the
// matched pattern in order; optional trailing groups may be empty strings.
type Command struct {
	Kind CommandKind
	Args []string
}

// commandPatterns is matched in order against normalized (trimmed, lowercase)
// input; the first match wins. Each pattern starts with a distinct literal
// keyword, so the patterns are mutually exclusive by construction.
var commandPatterns = []struct {
	kind CommandKind
	re   *regexp.Regexp
}{
	{CmdStatus, regexp.MustCompile(`^status(?:\s+(.+))?$`)},
	{CmdWater, regexp.MustCompile(`^water\s+(.+)$`)},
	{CmdNote, regexp.MustCompile(`^note\s+(.+?)\s*:\s*(.+)$`)},
	{CmdList, regexp.MustCompile(`^list$`)},
	{CmdHelp, regexp.MustCompile(`^help$`)},
	{CmdPH, regexp.MustCompile(`^ph\s+(.+?)\s+(\d+\.?\d*)$`)},
	{CmdPublic, regexp.MustCompile(`^public$`)},
	{CmdFollow, regexp.MustCompile(`^follow\s+(\d+)$`)},
	{CmdUnfollow, regexp.MustCompile(`^unfollow\s+(\d+)$`)},
	{CmdFollowing, regexp.MustCompile(`^following$`)},
	{CmdStage, regexp.MustCompile(`^stage\s+(.+?)\s+(.+)$`)},
	{CmdData, regexp.MustCompile(`^data\s+(.+?)\s+(.+)$`)},
	{CmdRecommend, regexp.MustCompile(`^recommend\s+(.+)$`)},
	{CmdStrain, regexp.MustCompile(`^strain\s+(.+)$`)},
	{CmdRate, regexp.MustCompile(`^rate\s+(.+?)\s+(\d)(?:\s+(.+))?$`)},
	{CmdTip, regexp.MustCompile(`^tip\s+(.+?)\s+(.+?)\s+(.+)$`)},
	{CmdTips, regexp.MustCompile(`^tips\s+(.+?)(?:\s+(.+))?$`)},
	{CmdAchievements, regexp.MustCompile(`^achievements$`)},
	{CmdStats, regexp.MustCompile(`^stats(?:\s+(.+))?$`)},
}

// ParseCommand normalizes the raw text and matches it against the grammar.
func ParseCommand(text string) Command {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, p := range commandPatterns {
		if m := p.re.FindStringSubmatch(normalized); m != nil {
			return Command{Kind: p.kind, Args: m[1:]}
		}
	}
	return Command{Kind: CmdUnknown}
}

var verificationCodeRe = regexp.MustCompile(`^\d{6}$`)

// isVerificationCode reports whether the normalized input is a bare 6-digit
// code. While a user is unverified this takes priority over command parsing.
func isVerificationCode(text string) bool {
	return verificationCodeRe.MatchString(text)
}
