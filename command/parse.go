package command

import (
	"regexp"
	"strings"
	"unicode"
)

type Kind int

const (
	KindNone Kind = iota
	KindHelp
	KindStart
	KindFor
	KindCheck
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindStart:
		return "start"
	case KindFor:
		return "for"
	case KindCheck:
		return "check"
	case KindEnd:
		return "end"
	default:
		return "none"
	}
}

// Command is one parsed request. Fields not used by Kind are empty.
type Command struct {
	Kind       Kind
	Order      string
	Restaurant string
	Text       string
}

var (
	helpRe  = regexp.MustCompile(`(?i)^food help`)
	startRe = regexp.MustCompile(`(?i)^food start "([^"]+)"(?: from (.+))?`)
	forRe   = regexp.MustCompile(`(?i)^food for "([^"]+)" get me\s+(.*)`)
	checkRe = regexp.MustCompile(`(?i)^food check(?: "([^"]+)")?`)
	endRe   = regexp.MustCompile(`(?i)^food end "([^"]+)"`)
)

// Parse matches body, the message text with the bot's name already removed.
// Trailing whitespace is kept so a blank order text still parses as a for
// command and can be rejected with a reply.
func Parse(body string) Command {
	body = strings.TrimLeftFunc(body, unicode.IsSpace)

	if helpRe.MatchString(body) {
		return Command{Kind: KindHelp}
	}
	if m := startRe.FindStringSubmatch(body); m != nil {
		return Command{Kind: KindStart, Order: m[1], Restaurant: m[2]}
	}
	if m := forRe.FindStringSubmatch(body); m != nil {
		return Command{Kind: KindFor, Order: m[1], Text: m[2]}
	}
	if m := checkRe.FindStringSubmatch(body); m != nil {
		return Command{Kind: KindCheck, Order: m[1]}
	}
	if m := endRe.FindStringSubmatch(body); m != nil {
		return Command{Kind: KindEnd, Order: m[1]}
	}
	return Command{}
}
