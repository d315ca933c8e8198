package main

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottodine/internal/account"
	"github.com/hammamikhairi/ottodine/internal/conversation"
	"github.com/hammamikhairi/ottodine/internal/display"
	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/engine"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

type cliApp struct {
	engine   *engine.Engine
	accounts *account.Service
	parser   domain.CommandParser
	notifier *conversation.CLINotifier
	ui       *display.UI
	log      *logger.Logger

	mu        sync.Mutex // guards the fields below; status reads them from the UI loop
	identity  domain.Identity
	sessionID string // customer cart session, empty otherwise
}

// status feeds the display bar.
func (a *cliApp) status() display.Status {
	a.mu.Lock()
	id, sessionID := a.identity, a.sessionID
	a.mu.Unlock()

	s := display.Status{User: id.Username, Role: id.Role}
	switch id.Role {
	case domain.RoleAdmin:
		s.Budget = a.engine.Balance()
	case domain.RoleCustomer:
		if items, err := a.engine.Cart(sessionID); err == nil {
			s.CartItems = len(items)
		}
		s.CartTotal, _ = a.engine.CartTotal(sessionID)
	}
	return s
}

func (a *cliApp) role() domain.Role {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity.Role
}

func (a *cliApp) session() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

func (a *cliApp) run(ctx context.Context) {
	a.ui.PrintChat(conversation.LineWelcome())

	uiCh := a.ui.InputChan()
	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		cmd, err := a.parser.Parse(ctx, input, a.role())
		if err != nil {
			a.notifier.Report(ctx, err)
			continue
		}

		a.log.Debug("command: %s (%d args)", cmd.Type, len(cmd.Args))
		if !a.handleCommand(ctx, cmd) {
			return
		}
	}
}

// handleCommand runs one command and reports whether the loop continues.
func (a *cliApp) handleCommand(ctx context.Context, cmd *domain.Command) bool {
	switch cmd.Type {
	case domain.CommandHelp:
		a.showHelp()
	case domain.CommandQuit:
		a.logout()
		a.ui.PrintChat(conversation.LineBye())
		return false
	case domain.CommandRegister:
		a.register(ctx, cmd.Args)
	case domain.CommandLogin:
		a.login(ctx, cmd.Args)
	case domain.CommandLogout:
		a.logout()
		a.ui.PrintChat(conversation.LineLoggedOut())
	case domain.CommandStock:
		a.showStock()
	case domain.CommandMenu:
		a.showMenu()
	case domain.CommandBudget:
		a.ui.PrintBlock(display.RenderBudget(a.engine.Balance()))
	case domain.CommandBuy:
		a.buy(ctx, cmd.Args)
	case domain.CommandRestock:
		a.restock(ctx, cmd.Args)
	case domain.CommandDish:
		a.createDish(ctx, cmd.Args)
	case domain.CommandInfo:
		a.showDish(cmd.Args[0])
	case domain.CommandAdd:
		a.addToCart(cmd.Args[0])
	case domain.CommandRemove:
		a.removeFromCart(cmd.Args[0])
	case domain.CommandModify:
		a.modify(cmd.Args)
	case domain.CommandCart:
		a.showCart()
	case domain.CommandConfirm:
		a.checkout(ctx)
	case domain.CommandHistory:
		a.showHistory()
	case domain.CommandUnknown:
		a.ui.PrintHint(conversation.LineUnknown(cmd.Raw))
	}
	return true
}

// report prints err. It returns true when the operation was nonetheless
// applied, so the caller still shows its result.
func (a *cliApp) report(ctx context.Context, err error) bool {
	if errors.Is(err, engine.ErrNotSaved) {
		a.notifier.NotifyUrgent(ctx, conversation.LineSaveFailed(err))
		return true
	}
	a.notifier.Report(ctx, err)
	return false
}

// ── Accounts ─────────────────────────────────────────────────────

func (a *cliApp) register(ctx context.Context, args []string) {
	age, err := conversation.ParseAge(args[3])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	c, err := a.accounts.Register(ctx, account.RegisterInput{
		Username: args[0],
		Password: args[1],
		Email:    args[2],
		Age:      age,
		Name:     args[4],
	})
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	a.ui.PrintChat(conversation.LineRegistered(c.Username))
}

func (a *cliApp) login(ctx context.Context, args []string) {
	id, err := a.accounts.SignIn(ctx, args[0], args[1], args[2])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}

	var sessionID string
	if id.Role == domain.RoleCustomer {
		sessionID = a.engine.OpenSession(id.Username)
	}
	a.mu.Lock()
	a.identity, a.sessionID = id, sessionID
	a.mu.Unlock()

	if id.Role == domain.RoleAdmin {
		a.ui.PrintChat(conversation.LineAdminWelcome())
	} else {
		name := id.Username
		if c, ok := a.accounts.Customer(id.Username); ok && c.Name != "" {
			name = c.Name
		}
		a.ui.PrintChat(conversation.LineCustomerWelcome(name))
	}
	a.showHelp()
}

func (a *cliApp) logout() {
	a.mu.Lock()
	sessionID := a.sessionID
	a.identity, a.sessionID = domain.Identity{}, ""
	a.mu.Unlock()

	if sessionID != "" {
		a.engine.CloseSession(sessionID)
	}
}

func (a *cliApp) showHelp() {
	cmds := conversation.Commands(a.role())
	usages := make([]string, len(cmds))
	for i, c := range cmds {
		usages[i] = conversation.Usage(c)
	}
	a.ui.PrintBlock(display.RenderHelp(usages))
}

// ── Admin ────────────────────────────────────────────────────────

func (a *cliApp) showStock() {
	items := a.engine.Stock()
	if len(items) == 0 {
		a.ui.PrintHint(conversation.LineEmptyStock())
		return
	}
	a.ui.PrintBlock(display.RenderStock(items))
}

func (a *cliApp) buy(ctx context.Context, args []string) {
	price, err := conversation.ParseAmount("price", args[1])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	qty, err := conversation.ParseAmount("quantity", args[2])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	ing, err := a.engine.AddIngredient(ctx, args[0], price, qty)
	if err != nil && !a.report(ctx, err) {
		return
	}
	a.ui.PrintChat(conversation.LineBought(ing, price.Mul(qty)))
}

func (a *cliApp) restock(ctx context.Context, args []string) {
	qty, err := conversation.ParseAmount("quantity", args[1])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	ing, err := a.engine.IncreaseIngredient(ctx, args[0], qty)
	if err != nil && !a.report(ctx, err) {
		return
	}
	a.ui.PrintChat(conversation.LineRestocked(ing))
}

func (a *cliApp) createDish(ctx context.Context, args []string) {
	price, err := conversation.ParseAmount("price", args[1])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	usages, err := conversation.ParseUsages(args[3])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	dish, err := a.engine.CreateDish(ctx, engine.DishInput{Name: args[0], Price: price, Info: args[2], Usages: usages})
	if err != nil && !a.report(ctx, err) {
		return
	}
	a.ui.PrintChat(conversation.LineDishAdded(dish))
}

// ── Shared ───────────────────────────────────────────────────────

func (a *cliApp) showMenu() {
	dishes := a.engine.Menu()
	if len(dishes) == 0 {
		a.ui.PrintHint(conversation.LineEmptyMenu())
		return
	}
	a.ui.PrintBlock(display.RenderMenu(dishes))
}

func (a *cliApp) showDish(name string) {
	d, err := a.engine.Dish(name)
	if err != nil {
		a.notifier.Report(context.Background(), err)
		return
	}
	a.ui.PrintBlock(display.RenderDish(d))
}

// ── Customer ─────────────────────────────────────────────────────

func (a *cliApp) addToCart(name string) {
	item, err := a.engine.AddToCart(a.session(), name)
	if err != nil {
		a.notifier.Report(context.Background(), err)
		return
	}
	a.ui.PrintChat(conversation.LineAddedToCart(item))
}

func (a *cliApp) removeFromCart(name string) {
	if err := a.engine.RemoveFromCart(a.session(), name); err != nil {
		a.notifier.Report(context.Background(), err)
		return
	}
	a.ui.PrintChat(conversation.LineRemovedFromCart(name))
}

func (a *cliApp) modify(args []string) {
	ctx := context.Background()
	qty, err := conversation.ParseAmount("quantity", args[2])
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	item, err := a.engine.ModifyIngredient(a.session(), args[0], args[1], qty)
	if err != nil {
		a.notifier.Report(ctx, err)
		return
	}
	a.ui.PrintChat(conversation.LineModified(item))
}

func (a *cliApp) showCart() {
	id := a.session()
	items, err := a.engine.Cart(id)
	if err != nil {
		a.notifier.Report(context.Background(), err)
		return
	}
	if len(items) == 0 {
		a.ui.PrintHint(conversation.LineEmptyCart())
		return
	}
	total, _ := a.engine.CartTotal(id)
	a.ui.PrintBlock(display.RenderCart(items, total))
}

func (a *cliApp) checkout(ctx context.Context) {
	orders, err := a.engine.Checkout(ctx, a.session())
	if err != nil && !a.report(ctx, err) {
		return
	}
	a.ui.PrintChat(conversation.LineOrderPlaced(orders))
}

func (a *cliApp) showHistory() {
	a.mu.Lock()
	user := a.identity.Username
	a.mu.Unlock()

	orders := a.engine.History(user)
	if len(orders) == 0 {
		a.ui.PrintHint(conversation.LineNoHistory())
		return
	}
	a.ui.PrintBlock(display.RenderHistory(orders))
}
