package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
	"github.com/hammamikhairi/ottodine/internal/storage"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2024, 6, 1, 19, 30, 0, 0, time.Local)

func repos(store *storage.MemoryStore) Repositories {
	return Repositories{
		Ingredients: store,
		Dishes:      store.Dishes(),
		Orders:      store,
		Budget:      store.Budget(),
	}
}

func setupEngine(t *testing.T) (*Engine, *storage.MemoryStore, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	eng := New(repos(store), log, WithInitialBudget(d("100")), WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	if err := eng.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	return eng, store, ctx
}

// stocked returns an engine with Flour, Sugar and a Cake dish.
func stocked(t *testing.T) (*Engine, *storage.MemoryStore, context.Context) {
	t.Helper()
	eng, store, ctx := setupEngine(t)
	if _, err := eng.AddIngredient(ctx, "Flour", d("2"), d("10")); err != nil {
		t.Fatalf("add flour: %v", err)
	}
	if _, err := eng.AddIngredient(ctx, "Sugar", d("3"), d("5")); err != nil {
		t.Fatalf("add sugar: %v", err)
	}
	_, err := eng.CreateDish(ctx, DishInput{
		Name:  "Cake",
		Price: d("20"),
		Info:  "sweet sponge",
		Usages: []domain.Usage{
			{Ingredient: "flour", Quantity: d("2")},
			{Ingredient: "SUGAR", Quantity: d("1")},
		},
	})
	if err != nil {
		t.Fatalf("create dish: %v", err)
	}
	return eng, store, ctx
}

func TestLoadInitialisesBudget(t *testing.T) {
	eng, store, ctx := setupEngine(t)

	if !eng.Balance().Equal(d("100")) {
		t.Fatalf("balance = %s, want 100", eng.Balance())
	}
	saved, ok, _ := store.Budget().Load(ctx)
	if !ok || !saved.Equal(d("100")) {
		t.Fatalf("initial budget not persisted: %s ok=%v", saved, ok)
	}
}

func TestAddIngredient(t *testing.T) {
	eng, store, ctx := setupEngine(t)

	tests := []struct {
		name  string
		ing   string
		price string
		qty   string
		kind  domain.Kind
	}{
		{"valid", "Flour", "2", "10", domain.KindUnknown},
		{"duplicate ignoring case", "FLOUR", "1", "1", domain.KindDuplicate},
		{"over budget", "Saffron", "100", "1", domain.KindInsufficientFunds},
		{"zero price", "Salt", "0", "1", domain.KindValidation},
		{"digits in name", "Salt2", "1", "1", domain.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.AddIngredient(ctx, tt.ing, d(tt.price), d(tt.qty))
			if got := domain.KindOf(err); got != tt.kind {
				t.Fatalf("kind = %s, want %s (err=%v)", got, tt.kind, err)
			}
		})
	}

	if !eng.Balance().Equal(d("80")) {
		t.Fatalf("balance = %s, want 80", eng.Balance())
	}
	saved, _ := store.Load(ctx)
	if len(saved) != 1 || saved[0].Name != "Flour" {
		t.Fatalf("unexpected saved stock %+v", saved)
	}
}

func TestIncreaseIngredient(t *testing.T) {
	eng, _, ctx := stocked(t)
	// 100 - 20 - 15 = 65 left.

	ing, err := eng.IncreaseIngredient(ctx, "sugar", d("5"))
	if err != nil {
		t.Fatalf("increase: %v", err)
	}
	if !ing.Quantity.Equal(d("10")) || !eng.Balance().Equal(d("50")) {
		t.Fatalf("quantity=%s balance=%s", ing.Quantity, eng.Balance())
	}

	if _, err := eng.IncreaseIngredient(ctx, "Cocoa", d("1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := eng.IncreaseIngredient(ctx, "Sugar", d("0")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	if _, err := eng.IncreaseIngredient(ctx, "Sugar", d("100")); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !eng.Balance().Equal(d("50")) {
		t.Fatalf("failed restock changed balance: %s", eng.Balance())
	}
}

func TestCreateDish(t *testing.T) {
	eng, store, ctx := stocked(t)

	dishes, _ := store.Dishes().Load(ctx, stockResolver(eng))
	if len(dishes) != 1 || dishes[0].Usages[0].Ingredient != "Flour" {
		t.Fatalf("dish not persisted with canonical names: %+v", dishes)
	}

	_, err := eng.CreateDish(ctx, DishInput{
		Name: "Brownie", Price: d("5"), Info: "dense and dark",
		Usages: []domain.Usage{{Ingredient: "Cocoa", Quantity: d("1")}, {Ingredient: "Sugar", Quantity: d("1")}},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unstocked usage, got %v", err)
	}

	_, err = eng.CreateDish(ctx, DishInput{
		Name: "cake", Price: d("5"), Info: "another cake",
		Usages: []domain.Usage{{Ingredient: "Flour", Quantity: d("1")}, {Ingredient: "Sugar", Quantity: d("1")}},
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	if got := len(eng.Menu()); got != 1 {
		t.Fatalf("menu has %d dishes, want 1", got)
	}
	if _, err := eng.Dish("CAKE"); err != nil {
		t.Fatalf("dish lookup: %v", err)
	}
}

func TestCheckout(t *testing.T) {
	eng, store, ctx := stocked(t)
	id := eng.OpenSession("alice")

	if _, err := eng.AddToCart(id, "cake"); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	total, _ := eng.CartTotal(id)
	if !total.Equal(d("20")) {
		t.Fatalf("total = %s, want 20", total)
	}

	orders, err := eng.Checkout(ctx, id)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(orders) != 1 || orders[0].Dish != "Cake" || !orders[0].PlacedAt.Equal(fixedNow) {
		t.Fatalf("unexpected orders %+v", orders)
	}
	if !eng.Balance().Equal(d("85")) {
		t.Fatalf("balance = %s, want 85", eng.Balance())
	}

	saved, _ := store.LoadAll(ctx)
	if len(saved) != 1 || saved[0].User != "alice" {
		t.Fatalf("order not persisted: %+v", saved)
	}
	balance, _, _ := store.Budget().Load(ctx)
	if !balance.Equal(d("85")) {
		t.Fatalf("persisted balance = %s", balance)
	}
	if got := eng.History("ALICE"); len(got) != 1 {
		t.Fatalf("history has %d orders, want 1", len(got))
	}
	items, _ := eng.Cart(id)
	if len(items) != 0 {
		t.Fatal("cart not cleared")
	}
}

func TestCheckoutShortageLeavesStateUntouched(t *testing.T) {
	eng, store, ctx := stocked(t)
	id := eng.OpenSession("alice")

	if _, err := eng.AddToCart(id, "Cake"); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if _, err := eng.ModifyIngredient(id, "Cake", "Flour", d("11")); err != nil {
		t.Fatalf("modify: %v", err)
	}

	_, err := eng.Checkout(ctx, id)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindInsufficientStock || de.Subject != "Flour" {
		t.Fatalf("expected insufficient Flour, got %v", err)
	}
	if !eng.Balance().Equal(d("65")) {
		t.Fatalf("balance changed: %s", eng.Balance())
	}
	if orders, _ := store.LoadAll(ctx); len(orders) != 0 {
		t.Fatalf("orders persisted on failure: %+v", orders)
	}
	items, _ := eng.Cart(id)
	if len(items) != 1 {
		t.Fatal("cart should be kept after a failed checkout")
	}
}

func TestAddToCartOnlyVisibleDishes(t *testing.T) {
	eng, _, ctx := stocked(t)
	id := eng.OpenSession("alice")

	// Drain flour through two checkouts of a heavy cake.
	for i := 0; i < 2; i++ {
		if _, err := eng.AddToCart(id, "Cake"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := eng.ModifyIngredient(id, "Cake", "Flour", d("5")); err != nil {
			t.Fatalf("modify: %v", err)
		}
		if _, err := eng.Checkout(ctx, id); err != nil {
			t.Fatalf("checkout %d: %v", i, err)
		}
	}

	if len(eng.Menu()) != 0 {
		t.Fatal("cake should be hidden once flour is gone")
	}
	if len(eng.Dishes()) != 1 {
		t.Fatal("cake should stay in the catalog")
	}
	if _, err := eng.AddToCart(id, "Cake"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := eng.IncreaseIngredient(ctx, "Flour", d("2")); err != nil {
		t.Fatalf("restock: %v", err)
	}
	if len(eng.Menu()) != 1 {
		t.Fatal("cake should return after restock")
	}
}

func TestUnknownSession(t *testing.T) {
	eng, _, ctx := stocked(t)
	id := eng.OpenSession("alice")
	eng.CloseSession(id)

	if _, err := eng.AddToCart(id, "Cake"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := eng.Checkout(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReloadRestoresState(t *testing.T) {
	eng, store, ctx := stocked(t)
	id := eng.OpenSession("alice")
	eng.AddToCart(id, "Cake")
	if _, err := eng.Checkout(ctx, id); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	log := logger.New(logger.LevelOff, nil)
	again := New(repos(store), log, WithInitialBudget(d("1")))
	if err := again.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !again.Balance().Equal(eng.Balance()) {
		t.Fatalf("balance %s, want %s", again.Balance(), eng.Balance())
	}
	if len(again.Menu()) != 1 || len(again.History("alice")) != 1 {
		t.Fatalf("menu=%d history=%d", len(again.Menu()), len(again.History("alice")))
	}
	flour, _ := lookup(again.Stock(), "Flour")
	if !flour.Quantity.Equal(d("8")) {
		t.Fatalf("flour = %s, want 8", flour.Quantity)
	}
}

func lookup(items []domain.Ingredient, name string) (domain.Ingredient, bool) {
	for _, ing := range items {
		if domain.SameName(ing.Name, name) {
			return ing, true
		}
	}
	return domain.Ingredient{}, false
}

type resolverFunc func(string) (domain.Ingredient, bool)

func (f resolverFunc) Lookup(name string) (domain.Ingredient, bool) { return f(name) }

func stockResolver(e *Engine) domain.IngredientResolver {
	items := e.Stock()
	return resolverFunc(func(name string) (domain.Ingredient, bool) { return lookup(items, name) })
}

type failingIngredients struct {
	domain.IngredientRepository
}

func (failingIngredients) Save(ctx context.Context, items []domain.Ingredient) error {
	return errors.New("disk full")
}

func TestPersistFailureKeepsCommittedState(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	r := repos(store)
	r.Ingredients = failingIngredients{store}
	eng := New(r, log, WithInitialBudget(d("100")))
	ctx := context.Background()
	if err := eng.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, err := eng.AddIngredient(ctx, "Flour", d("2"), d("10"))
	if !errors.Is(err, ErrNotSaved) {
		t.Fatalf("expected ErrNotSaved, got %v", err)
	}
	if domain.KindOf(err) != domain.KindUnknown {
		t.Fatalf("persistence error should not carry a domain kind, got %s", domain.KindOf(err))
	}
	if _, ok := lookup(eng.Stock(), "Flour"); !ok || !eng.Balance().Equal(d("80")) {
		t.Fatalf("in-memory purchase should stay committed, balance %s", eng.Balance())
	}
}

// flakyIngredients fails its first few saves.
type flakyIngredients struct {
	domain.IngredientRepository
	failures int
}

func (f *flakyIngredients) Save(ctx context.Context, items []domain.Ingredient) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.IngredientRepository.Save(ctx, items)
}

func TestCheckoutRecordsOrdersWhenStockSaveFails(t *testing.T) {
	eng, store, ctx := stocked(t)
	flaky := &flakyIngredients{IngredientRepository: store, failures: 1}
	eng.repos.Ingredients = flaky

	id := eng.OpenSession("bob")
	if _, err := eng.AddToCart(id, "Cake"); err != nil {
		t.Fatalf("add: %v", err)
	}
	orders, err := eng.Checkout(ctx, id)
	if !errors.Is(err, ErrNotSaved) {
		t.Fatalf("expected ErrNotSaved, got %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected the committed order back, got %d", len(orders))
	}
	saved, _ := store.LoadAll(ctx)
	if len(saved) != 1 || saved[0].User != "bob" {
		t.Fatalf("order not appended despite stock save failure: %+v", saved)
	}
	balance, _, _ := store.Budget().Load(ctx)
	if !balance.Equal(d("85")) {
		t.Fatalf("budget save should still be attempted, saved %s", balance)
	}

	if _, err := eng.IncreaseIngredient(ctx, "Flour", d("1")); err != nil {
		t.Fatalf("restock: %v", err)
	}

	again := New(repos(store), logger.New(logger.LevelOff, nil))
	if err := again.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	flour, _ := lookup(again.Stock(), "Flour")
	if !again.Balance().Equal(d("83")) || !flour.Quantity.Equal(d("9")) {
		t.Fatalf("reloaded balance %s flour %s, want 83 and 9", again.Balance(), flour.Quantity)
	}
	if n := len(again.History("bob")); n != 1 {
		t.Fatalf("reloaded history(bob) = %d, want 1", n)
	}
}

type failingOrders struct {
	domain.OrderRepository
}

func (failingOrders) LoadAll(ctx context.Context) ([]domain.Order, error) {
	return nil, errors.New("orders unreadable")
}

func TestFailedLoadLeavesEngineUntouched(t *testing.T) {
	_, store, ctx := stocked(t)

	r := repos(store)
	r.Orders = failingOrders{store}
	eng := New(r, logger.New(logger.LevelOff, nil), WithInitialBudget(d("100")))
	if err := eng.Load(ctx); err == nil {
		t.Fatal("expected load error")
	}
	if n := len(eng.Stock()); n != 0 {
		t.Fatalf("stock populated after failed load: %d items", n)
	}
	if n := len(eng.Dishes()); n != 0 {
		t.Fatalf("dishes populated after failed load: %d", n)
	}
	if !eng.Balance().Equal(d("100")) {
		t.Fatalf("balance = %s, want untouched 100", eng.Balance())
	}
}
