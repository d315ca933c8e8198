package conversation

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input    string
		role     domain.Role
		wantType domain.CommandType
		wantArgs []string
	}{
		// Any role
		{"help", domain.RoleGuest, domain.CommandHelp, nil},
		{"?", domain.RoleCustomer, domain.CommandHelp, nil},
		{"EXIT", domain.RoleAdmin, domain.CommandQuit, nil},

		// Guest
		{"login alice secret1 a@b.co", domain.RoleGuest, domain.CommandLogin, []string{"alice", "secret1", "a@b.co"}},
		{"register alice secret1 a@b.co 30 Alice Smith", domain.RoleGuest, domain.CommandRegister,
			[]string{"alice", "secret1", "a@b.co", "30", "Alice Smith"}},

		// Admin
		{"stock", domain.RoleAdmin, domain.CommandStock, nil},
		{"buy Brown Sugar 2.5 10", domain.RoleAdmin, domain.CommandBuy, []string{"Brown Sugar", "2.5", "10"}},
		{"restock flour 3", domain.RoleAdmin, domain.CommandRestock, []string{"flour", "3"}},
		{"dish Cake | 20 | sweet sponge | Flour:2, Sugar:1", domain.RoleAdmin, domain.CommandDish,
			[]string{"Cake", "20", "sweet sponge", "Flour:2, Sugar:1"}},
		{"menu", domain.RoleAdmin, domain.CommandMenu, nil},

		// Customer
		{"add Chocolate Cake", domain.RoleCustomer, domain.CommandAdd, []string{"Chocolate Cake"}},
		{"rm cake", domain.RoleCustomer, domain.CommandRemove, []string{"cake"}},
		{"modify Chocolate Cake | Flour | 3", domain.RoleCustomer, domain.CommandModify, []string{"Chocolate Cake", "Flour", "3"}},
		{"modify cake flour 3", domain.RoleCustomer, domain.CommandModify, []string{"cake", "flour", "3"}},
		{"checkout", domain.RoleCustomer, domain.CommandConfirm, nil},
		{"history", domain.RoleCustomer, domain.CommandHistory, nil},
		{"info Cake", domain.RoleCustomer, domain.CommandInfo, []string{"Cake"}},

		// Unknown
		{"dance", domain.RoleCustomer, domain.CommandUnknown, nil},
		{"   ", domain.RoleCustomer, domain.CommandUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := parser.Parse(ctx, tt.input, tt.role)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Type != tt.wantType {
				t.Fatalf("expected %s, got %s", tt.wantType, cmd.Type)
			}
			if !slices.Equal(cmd.Args, tt.wantArgs) {
				t.Fatalf("expected args %q, got %q", tt.wantArgs, cmd.Args)
			}
		})
	}
}

func TestKeywordParserRejects(t *testing.T) {
	parser := NewKeywordParser(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		role    domain.Role
		wantMsg string
	}{
		{"customer buying stock", "buy flour 1 1", domain.RoleCustomer, "not available"},
		{"admin adding to cart", "add Cake", domain.RoleAdmin, "not available"},
		{"guest viewing menu", "menu", domain.RoleGuest, "sign in first"},
		{"login while signed in", "login a b c", domain.RoleAdmin, "not available"},
		{"missing buy quantity", "buy flour 1", domain.RoleAdmin, "usage: buy"},
		{"dish with three fields", "dish Cake | 20 | Flour:2", domain.RoleAdmin, "usage: dish"},
		{"dish with empty field", "dish Cake | 20 | | Flour:2", domain.RoleAdmin, "usage: dish"},
		{"stock with argument", "stock please", domain.RoleAdmin, "usage: stock"},
		{"add without dish", "add", domain.RoleCustomer, "usage: add"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(ctx, tt.input, tt.role)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestCommandsByRole(t *testing.T) {
	admin := Commands(domain.RoleAdmin)
	customer := Commands(domain.RoleCustomer)

	if !slices.Contains(admin, domain.CommandBuy) || slices.Contains(admin, domain.CommandAdd) {
		t.Fatalf("unexpected admin commands %v", admin)
	}
	if !slices.Contains(customer, domain.CommandConfirm) || slices.Contains(customer, domain.CommandStock) {
		t.Fatalf("unexpected customer commands %v", customer)
	}
	if Usage(domain.CommandRestock) != "restock <ingredient> <kg>" {
		t.Fatalf("unexpected usage %q", Usage(domain.CommandRestock))
	}
}

func TestParseUsages(t *testing.T) {
	got, err := ParseUsages("Flour:2, Brown Sugar : 0.5,")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[1].Ingredient != "Brown Sugar" || !got[1].Quantity.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected usages %+v", got)
	}

	for _, bad := range []string{"Flour", "Flour:lots"} {
		if _, err := ParseUsages(bad); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", bad, err)
		}
	}
}

func TestLineError(t *testing.T) {
	err := domain.Errorf(domain.KindInsufficientStock, "Flour", "need 3 kg, have 1 kg")
	if got := LineError(err); got != "Not enough Flour in stock. Need 3 kg, have 1 kg" {
		t.Fatalf("unexpected line %q", got)
	}
	if got := LineError(errors.New("disk full")); !strings.Contains(got, "disk full") {
		t.Fatalf("unexpected line %q", got)
	}
}
