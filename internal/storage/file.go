package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// File names inside the data directory.
const (
	FileIngredients = "ingredients.txt"
	FileMenu        = "menu.txt"
	FileOrders      = "orders.txt"
	FileBudget      = "budget.txt"
	FileUsers       = "users.txt"
)

// Compile-time interface checks.
var (
	_ domain.IngredientRepository = (*IngredientFile)(nil)
	_ domain.DishRepository       = (*DishFile)(nil)
	_ domain.OrderRepository      = (*OrderFile)(nil)
	_ domain.BudgetRepository     = (*BudgetFile)(nil)
	_ domain.CustomerRepository   = (*CustomerFile)(nil)
)

// FileStore hands out flat-file repositories rooted in one directory.
type FileStore struct {
	dir string
	log *logger.Logger
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) string { return filepath.Join(s.dir, name) }

// Ingredients returns the ingredient repository.
func (s *FileStore) Ingredients() *IngredientFile {
	return &IngredientFile{path: s.path(FileIngredients), log: s.log}
}

// Dishes returns the dish repository.
func (s *FileStore) Dishes() *DishFile {
	return &DishFile{path: s.path(FileMenu), log: s.log}
}

// Orders returns the order repository.
func (s *FileStore) Orders() *OrderFile {
	return &OrderFile{path: s.path(FileOrders), log: s.log}
}

// Budget returns the budget repository.
func (s *FileStore) Budget() *BudgetFile {
	return &BudgetFile{path: s.path(FileBudget), log: s.log}
}

// Customers returns the customer repository.
func (s *FileStore) Customers() *CustomerFile {
	return &CustomerFile{path: s.path(FileUsers), log: s.log}
}

// IngredientFile persists ingredients.txt.
type IngredientFile struct {
	path string
	log  *logger.Logger
}

// Load reads every ingredient. A missing file is an empty catalog.
func (f *IngredientFile) Load(ctx context.Context) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	err := readFile(f.path, f.log, func(r io.Reader) (err error) {
		out, err = DecodeIngredients(r, f.log)
		return err
	})
	return out, err
}

// Save rewrites the file.
func (f *IngredientFile) Save(ctx context.Context, items []domain.Ingredient) error {
	return writeFile(f.path, func(w io.Writer) error { return EncodeIngredients(w, items) })
}

// DishFile persists menu.txt.
type DishFile struct {
	path string
	log  *logger.Logger
}

// Load reads every dish, resolving usages against catalog.
func (f *DishFile) Load(ctx context.Context, catalog domain.IngredientResolver) ([]domain.Dish, error) {
	var out []domain.Dish
	err := readFile(f.path, f.log, func(r io.Reader) (err error) {
		out, err = DecodeDishes(r, catalog, f.log)
		return err
	})
	return out, err
}

// Save rewrites the file with the full dish catalog.
func (f *DishFile) Save(ctx context.Context, dishes []domain.Dish) error {
	return writeFile(f.path, func(w io.Writer) error { return EncodeDishes(w, dishes) })
}

// OrderFile persists orders.txt. Records are only ever appended.
type OrderFile struct {
	path string
	log  *logger.Logger
}

// Append adds one record line to the end of the file.
func (f *OrderFile) Append(ctx context.Context, o domain.Order) error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(f.path), err)
	}
	if _, err := fmt.Fprintln(fh, EncodeOrder(o)); err != nil {
		fh.Close()
		return fmt.Errorf("appending order: %w", err)
	}
	return fh.Close()
}

// LoadAll reads every record in file order.
func (f *OrderFile) LoadAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := readFile(f.path, f.log, func(r io.Reader) (err error) {
		out, err = DecodeOrders(r, f.log)
		return err
	})
	return out, err
}

// BudgetFile persists budget.txt.
type BudgetFile struct {
	path string
	log  *logger.Logger
}

// Load reads the stored balance; ok is false when the file does not exist.
func (f *BudgetFile) Load(ctx context.Context) (decimal.Decimal, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("reading %s: %w", filepath.Base(f.path), err)
	}
	v, err := decimal.NewFromString(strings.TrimSpace(string(data)))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parsing %s: %w", filepath.Base(f.path), err)
	}
	return v, true, nil
}

// Save rewrites the balance.
func (f *BudgetFile) Save(ctx context.Context, balance decimal.Decimal) error {
	return writeFile(f.path, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, balance.String())
		return err
	})
}

// CustomerFile persists users.txt.
type CustomerFile struct {
	path string
	log  *logger.Logger
}

// Load reads every customer.
func (f *CustomerFile) Load(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	err := readFile(f.path, f.log, func(r io.Reader) (err error) {
		out, err = DecodeCustomers(r, f.log)
		return err
	})
	return out, err
}

// Save rewrites the file.
func (f *CustomerFile) Save(ctx context.Context, customers []domain.Customer) error {
	return writeFile(f.path, func(w io.Writer) error { return EncodeCustomers(w, customers) })
}

func readFile(path string, log *logger.Logger, decode func(io.Reader) error) error {
	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("%s not found, starting empty", filepath.Base(path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer fh.Close()
	if err := decode(fh); err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFile encodes into a temp file next to path and renames it over path.
func writeFile(path string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
