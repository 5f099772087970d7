package pos

import (
	"errors"
	"testing"

	"dukan-pos/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func testProduct(stock int, price float64) domain.Product {
	return domain.Product{
		ID:        uuid.New(),
		Name:      "Test Product",
		SalePrice: price,
		Stock:     stock,
	}
}

func TestAdd(t *testing.T) {
	t.Run("adds a new line with quantity one", func(t *testing.T) {
		cart := New()
		product := testProduct(5, 1000)

		if err := cart.Add(product); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}

		items := cart.Items()
		if len(items) != 1 {
			t.Fatalf("expected 1 line, got %d", len(items))
		}
		if items[0].Quantity != 1 {
			t.Errorf("expected quantity 1, got %d", items[0].Quantity)
		}
	})

	t.Run("increments quantity for a product already in the cart", func(t *testing.T) {
		cart := New()
		product := testProduct(5, 1000)

		cart.Add(product)
		cart.Add(product)

		items := cart.Items()
		if len(items) != 1 {
			t.Fatalf("expected 1 line, got %d", len(items))
		}
		if items[0].Quantity != 2 {
			t.Errorf("expected quantity 2, got %d", items[0].Quantity)
		}
	})

	t.Run("rejects an out of stock product", func(t *testing.T) {
		cart := New()
		product := testProduct(0, 1000)

		if err := cart.Add(product); !errors.Is(err, ErrOutOfStock) {
			t.Errorf("expected ErrOutOfStock, got %v", err)
		}
		if cart.Len() != 0 {
			t.Errorf("cart should stay empty, has %d lines", cart.Len())
		}
	})

	t.Run("caps increments at last-known stock", func(t *testing.T) {
		cart := New()
		product := testProduct(2, 1000)

		cart.Add(product)
		cart.Add(product)

		if err := cart.Add(product); !errors.Is(err, ErrInsufficientStock) {
			t.Errorf("expected ErrInsufficientStock, got %v", err)
		}
		if items := cart.Items(); items[0].Quantity != 2 {
			t.Errorf("quantity should stay at 2, got %d", items[0].Quantity)
		}
	})
}

func TestSetQuantity(t *testing.T) {
	t.Run("sets the quantity directly", func(t *testing.T) {
		cart := New()
		product := testProduct(5, 1000)
		cart.Add(product)

		cart.SetQuantity(product.ID, 4)

		if items := cart.Items(); items[0].Quantity != 4 {
			t.Errorf("expected quantity 4, got %d", items[0].Quantity)
		}
	})

	t.Run("does not clamp above known stock", func(t *testing.T) {
		// Stock may have changed since the catalog read; the commit is
		// the authoritative guard.
		cart := New()
		product := testProduct(5, 1000)
		cart.Add(product)

		cart.SetQuantity(product.ID, 50)

		if items := cart.Items(); items[0].Quantity != 50 {
			t.Errorf("expected quantity 50, got %d", items[0].Quantity)
		}
	})

	t.Run("zero or negative removes the line", func(t *testing.T) {
		cart := New()
		product := testProduct(5, 1000)
		cart.Add(product)

		cart.SetQuantity(product.ID, 0)

		if cart.Len() != 0 {
			t.Errorf("expected empty cart, got %d lines", cart.Len())
		}
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		cart := New()
		cart.Add(testProduct(5, 1000))

		cart.SetQuantity(uuid.New(), 3)

		if items := cart.Items(); items[0].Quantity != 1 {
			t.Errorf("existing line changed unexpectedly: %d", items[0].Quantity)
		}
	})
}

func TestRemove(t *testing.T) {
	cart := New()
	first := testProduct(5, 1000)
	second := testProduct(5, 2000)
	cart.Add(first)
	cart.Add(second)

	cart.Remove(first.ID)

	items := cart.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Product.ID != second.ID {
		t.Error("wrong line removed")
	}
}

func TestClear(t *testing.T) {
	cart := New()
	cart.Add(testProduct(5, 1000))
	cart.Add(testProduct(5, 2000))

	cart.Clear()

	if cart.Len() != 0 {
		t.Errorf("expected empty cart, got %d lines", cart.Len())
	}
	if cart.Total() != 0 {
		t.Errorf("expected zero total, got %f", cart.Total())
	}
}

func TestLines(t *testing.T) {
	cart := New()
	first := testProduct(5, 1000)
	second := testProduct(5, 2000)
	cart.Add(first)
	cart.Add(second)
	cart.SetQuantity(second.ID, 3)

	lines := cart.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ProductID != first.ID || lines[0].Quantity != 1 {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].ProductID != second.ID || lines[1].Quantity != 3 {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestProperty_TotalMatchesLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total equals the sum of quantity times price over all lines", prop.ForAll(
		func(prices []float64, quantities []int) bool {
			cart := New()

			n := len(prices)
			if len(quantities) < n {
				n = len(quantities)
			}

			var expected float64
			for i := 0; i < n; i++ {
				product := testProduct(1000000, prices[i])
				if err := cart.Add(product); err != nil {
					return false
				}
				cart.SetQuantity(product.ID, quantities[i])
				if quantities[i] > 0 {
					expected += float64(quantities[i]) * prices[i]
				}
			}

			return cart.Total() == expected
		},
		gen.SliceOf(gen.Float64Range(0, 100000)),
		gen.SliceOf(gen.IntRange(0, 500)),
	))

	properties.Property("line count never exceeds the number of added products", prop.ForAll(
		func(adds int) bool {
			cart := New()
			for i := 0; i < adds; i++ {
				cart.Add(testProduct(10, 100))
			}
			return cart.Len() == adds
		},
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
