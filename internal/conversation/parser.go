// Package conversation turns typed lines into commands and reports results
// back to the operator.
package conversation

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*KeywordParser)(nil)

var (
	guestOnly    = []domain.Role{domain.RoleGuest}
	adminOnly    = []domain.Role{domain.RoleAdmin}
	customerOnly = []domain.Role{domain.RoleCustomer}
	signedIn     = []domain.Role{domain.RoleAdmin, domain.RoleCustomer}
)

// commandRule describes one keyword. A nil roles list allows every role.
// args are tried in order against the text after the keyword; a rule with
// no args patterns accepts only an empty remainder.
type commandRule struct {
	cmd     domain.CommandType
	aliases []string
	args    []*regexp.Regexp
	pipe    bool // split the single captured group on "|"
	roles   []domain.Role
	usage   string
}

var (
	reOne     = regexp.MustCompile(`^(.+)$`)
	reTriple  = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)$`)
	reBuy     = regexp.MustCompile(`^(.+?)\s+(\S+)\s+(\S+)$`)
	reRestock = regexp.MustCompile(`^(.+?)\s+(\S+)$`)
	reSignUp  = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)\s+(-?\d+)\s+(.+)$`)
	reModify  = regexp.MustCompile(`^(.+?)\s*\|\s*(.+?)\s*\|\s*(\S+)$`)
)

var rules = []commandRule{
	{cmd: domain.CommandHelp, aliases: []string{"help", "h", "?"}, usage: "help"},
	{cmd: domain.CommandQuit, aliases: []string{"quit", "exit", "q"}, usage: "quit"},
	{cmd: domain.CommandLogin, aliases: []string{"login", "signin"}, args: []*regexp.Regexp{reTriple}, roles: guestOnly,
		usage: "login <username> <password> <email>"},
	{cmd: domain.CommandRegister, aliases: []string{"register", "signup"}, args: []*regexp.Regexp{reSignUp}, roles: guestOnly,
		usage: "register <username> <password> <email> <age> <full name>"},
	{cmd: domain.CommandLogout, aliases: []string{"logout"}, roles: signedIn, usage: "logout"},
	{cmd: domain.CommandMenu, aliases: []string{"menu"}, roles: signedIn, usage: "menu"},
	{cmd: domain.CommandInfo, aliases: []string{"info", "show"}, args: []*regexp.Regexp{reOne}, roles: signedIn,
		usage: "info <dish>"},
	{cmd: domain.CommandStock, aliases: []string{"stock"}, roles: adminOnly, usage: "stock"},
	{cmd: domain.CommandBudget, aliases: []string{"budget"}, roles: adminOnly, usage: "budget"},
	{cmd: domain.CommandBuy, aliases: []string{"buy"}, args: []*regexp.Regexp{reBuy}, roles: adminOnly,
		usage: "buy <ingredient> <price per kg> <kg>"},
	{cmd: domain.CommandRestock, aliases: []string{"restock"}, args: []*regexp.Regexp{reRestock}, roles: adminOnly,
		usage: "restock <ingredient> <kg>"},
	{cmd: domain.CommandDish, aliases: []string{"dish"}, args: []*regexp.Regexp{reOne}, pipe: true, roles: adminOnly,
		usage: "dish <name> | <price> | <info> | <ingredient>:<kg>, <ingredient>:<kg>"},
	{cmd: domain.CommandAdd, aliases: []string{"add", "order"}, args: []*regexp.Regexp{reOne}, roles: customerOnly,
		usage: "add <dish>"},
	{cmd: domain.CommandRemove, aliases: []string{"remove", "rm"}, args: []*regexp.Regexp{reOne}, roles: customerOnly,
		usage: "remove <dish>"},
	{cmd: domain.CommandCart, aliases: []string{"cart"}, roles: customerOnly, usage: "cart"},
	{cmd: domain.CommandModify, aliases: []string{"modify", "change"}, args: []*regexp.Regexp{reModify, reTriple}, roles: customerOnly,
		usage: "modify <dish> | <ingredient> | <kg>"},
	{cmd: domain.CommandConfirm, aliases: []string{"confirm", "checkout", "pay"}, roles: customerOnly, usage: "confirm"},
	{cmd: domain.CommandHistory, aliases: []string{"history", "orders"}, roles: customerOnly, usage: "history"},
}

// dishFields is the number of "|" separated fields of the dish command.
const dishFields = 4

// KeywordParser matches the first word of the input to a command and the
// rest against that command's argument patterns.
type KeywordParser struct {
	log     *logger.Logger
	byAlias map[string]*commandRule
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log, byAlias: make(map[string]*commandRule)}
	for i := range rules {
		for _, a := range rules[i].aliases {
			p.byAlias[a] = &rules[i]
		}
	}
	return p
}

// Parse converts input into a command. Unrecognised keywords yield
// CommandUnknown with no error. A known keyword used by the wrong role or
// with malformed arguments yields a validation error carrying the usage.
func (p *KeywordParser) Parse(ctx context.Context, input string, role domain.Role) (*domain.Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Command{Type: domain.CommandUnknown}, nil
	}
	p.log.Debug("parsing input: %q", trimmed)

	keyword, rest, _ := strings.Cut(trimmed, " ")
	rule, ok := p.byAlias[strings.ToLower(keyword)]
	if !ok {
		p.log.Debug("no command for %q", keyword)
		return &domain.Command{Type: domain.CommandUnknown, Raw: trimmed}, nil
	}
	if rule.roles != nil && !slices.Contains(rule.roles, role) {
		return nil, roleError(rule, role)
	}

	args, ok := rule.match(strings.TrimSpace(rest))
	if !ok {
		return nil, domain.Errorf(domain.KindValidation, rule.cmd.String(), "usage: %s", rule.usage)
	}
	p.log.Debug("matched command: %s %q", rule.cmd, args)
	return &domain.Command{Type: rule.cmd, Args: args, Raw: trimmed}, nil
}

func (r *commandRule) match(rest string) ([]string, bool) {
	if len(r.args) == 0 {
		return nil, rest == ""
	}
	for _, re := range r.args {
		m := re.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		if r.pipe {
			fields := splitTrim(m[1], "|")
			if len(fields) != dishFields || slices.Contains(fields, "") {
				return nil, false
			}
			return fields, true
		}
		return splitTrimAll(m[1:]), true
	}
	return nil, false
}

func roleError(r *commandRule, role domain.Role) error {
	if role == domain.RoleGuest {
		return domain.Errorf(domain.KindValidation, r.cmd.String(), "sign in first")
	}
	return domain.Errorf(domain.KindValidation, r.cmd.String(), "not available for %s accounts", role)
}

// Usage returns the syntax line of a command.
func Usage(cmd domain.CommandType) string {
	for _, r := range rules {
		if r.cmd == cmd {
			return r.usage
		}
	}
	return ""
}

// Commands lists the commands a role may use, in help order.
func Commands(role domain.Role) []domain.CommandType {
	var out []domain.CommandType
	for _, r := range rules {
		if r.roles == nil || slices.Contains(r.roles, role) {
			out = append(out, r.cmd)
		}
	}
	return out
}

func splitTrim(s, sep string) []string {
	return splitTrimAll(strings.Split(s, sep))
}

func splitTrimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
