package storage

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

func TestDecodeIngredientsSkipsBadLines(t *testing.T) {
	in := strings.Join([]string{
		"Flour|2|10",
		"Sugar|1.5|0",
		"Broken|x|1",
		"Salt|0|3",
		"too|many|fields|here",
		"",
		"Milk|3|-1",
	}, "\n")

	got, err := DecodeIngredients(strings.NewReader(in), logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 ingredients, got %+v", got)
	}
	if got[0].Name != "Flour" || !got[0].PricePerUnit.Equal(d("2")) || !got[0].Quantity.Equal(d("10")) {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if got[1].Name != "Sugar" || !got[1].Quantity.IsZero() {
		t.Fatalf("expected drained Sugar, got %+v", got[1])
	}
}

func TestDishesEncodeDecode(t *testing.T) {
	stock := newStock(
		domain.Ingredient{Name: "Flour", PricePerUnit: d("1"), Quantity: d("10")},
		domain.Ingredient{Name: "Sugar", PricePerUnit: d("1"), Quantity: d("5")},
	)
	cake, err := domain.NewDish("Cake", d("20"), "sweet | airy", []domain.Usage{
		{Ingredient: "Flour", Quantity: d("2")},
		{Ingredient: "Sugar", Quantity: d("0.5")},
	})
	if err != nil {
		t.Fatalf("new dish: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeDishes(&buf, []domain.Dish{cake}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "Cake|20|sweet | airy\nING|Flour|2\nING|Sugar|0.5\nEND_DISH\n"
	if buf.String() != want {
		t.Fatalf("encoded:\n%q\nwant:\n%q", buf.String(), want)
	}

	got, err := DecodeDishes(&buf, stock, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 dish, got %d", len(got))
	}
	if got[0].Info != "sweet | airy" || len(got[0].Usages) != 2 || !got[0].Usages[1].Quantity.Equal(d("0.5")) {
		t.Fatalf("unexpected dish %+v", got[0])
	}
}

func TestDecodeDishesDropsUnresolved(t *testing.T) {
	stock := newStock(
		domain.Ingredient{Name: "Flour", PricePerUnit: d("1"), Quantity: d("10")},
		domain.Ingredient{Name: "Sugar", PricePerUnit: d("1"), Quantity: d("5")},
		domain.Ingredient{Name: "Egg", PricePerUnit: d("1"), Quantity: d("5")},
	)
	in := strings.Join([]string{
		"Cake|20|sweet sponge",
		"ING|flour|2",
		"ING|Cocoa|1",
		"ING|Egg|1",
		"END_DISH",
		"Toast|4|crunchy bread",
		"ING|Butter|1",
		"ING|Flour|1",
		"END_DISH",
		"Pie|9|never closed",
		"ING|Flour|1",
	}, "\n")

	got, err := DecodeDishes(strings.NewReader(in), stock, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Cake" {
		t.Fatalf("expected only Cake, got %+v", got)
	}
	if len(got[0].Usages) != 2 || got[0].Usages[0].Ingredient != "Flour" {
		t.Fatalf("expected Flour and Egg usages, got %+v", got[0].Usages)
	}
}

func TestOrderLineFormat(t *testing.T) {
	at := time.Date(2024, time.February, 7, 9, 5, 0, 0, time.Local)
	o := domain.Order{User: "alice", Dish: "Cake", Price: d("20.5"), PlacedAt: at}

	line := EncodeOrder(o)
	if line != "alice|Cake|20.5|7|2|2024|9|5" {
		t.Fatalf("unexpected line %q", line)
	}

	got, err := DecodeOrders(strings.NewReader(line+"\nbad|line\n"), logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || !got[0].PlacedAt.Equal(at) || !got[0].Price.Equal(d("20.5")) {
		t.Fatalf("unexpected orders %+v", got)
	}
}

func TestCustomersEncodeDecode(t *testing.T) {
	in := []domain.Customer{{
		Credentials: domain.Credentials{Username: "alice", PasswordHash: "$2a$10$hash", Email: "a@b.co"},
		Name:        "Alice Smith",
		Age:         30,
	}}
	var buf bytes.Buffer
	if err := EncodeCustomers(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf.WriteString("bob|h|e|Bob|notanumber\n")

	got, err := DecodeCustomers(&buf, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0] != in[0] {
		t.Fatalf("got %+v, want %+v", got, in)
	}
}

func TestDecodeDishesWarnsOnUnterminatedDish(t *testing.T) {
	stock := newStock(
		domain.Ingredient{Name: "Flour", PricePerUnit: d("1"), Quantity: d("10")},
		domain.Ingredient{Name: "Sugar", PricePerUnit: d("1"), Quantity: d("5")},
	)
	in := strings.Join([]string{
		"Cake|20|sweet sponge",
		"ING|Flour|2",
		"ING|Sugar|1",
		"Pie|9|flaky crust",
		"ING|Flour|1",
		"ING|Sugar|1",
		"END_DISH",
	}, "\n")

	var buf bytes.Buffer
	got, err := DecodeDishes(strings.NewReader(in), stock, logger.New(logger.LevelNormal, &buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Pie" {
		t.Fatalf("expected only Pie, got %+v", got)
	}
	if !strings.Contains(buf.String(), `dish "Cake" has no END_DISH terminator`) {
		t.Fatalf("expected a warning for Cake, got %q", buf.String())
	}
}
