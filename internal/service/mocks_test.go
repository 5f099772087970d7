package service

import (
	"context"
	"sort"
	"time"

	"dukan-pos/internal/domain"
	"dukan-pos/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories shared by the service tests

type mockUserRepository struct {
	users   map[uuid.UUID]*domain.User
	deleted []uuid.UUID
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type mockEmployeeRepository struct {
	employees map[uuid.UUID]*domain.Employee
	createErr error
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	return &mockEmployeeRepository{employees: make(map[uuid.UUID]*domain.Employee)}
}

func (m *mockEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.employees[employee.ID] = employee
	return nil
}

func (m *mockEmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	if _, ok := m.employees[employee.ID]; !ok {
		return repository.ErrEmployeeNotFound
	}
	m.employees[employee.ID] = employee
	return nil
}

func (m *mockEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.employees[id]; !ok {
		return repository.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	employee, ok := m.employees[id]
	if !ok {
		return nil, repository.ErrEmployeeNotFound
	}
	return employee, nil
}

func (m *mockEmployeeRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	for _, employee := range m.employees {
		if employee.UserID == userID {
			return employee, nil
		}
	}
	return nil, repository.ErrEmployeeNotFound
}

func (m *mockEmployeeRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	out := make([]*domain.Employee, 0, len(m.employees))
	for _, employee := range m.employees {
		out = append(out, employee)
	}
	return out, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, ok := m.tokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockCustomerRepository struct {
	customers map[uuid.UUID]*domain.Customer
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[uuid.UUID]*domain.Customer)}
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if _, ok := m.customers[customer.ID]; !ok {
		return repository.ErrCustomerNotFound
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.customers[id]; !ok {
		return repository.ErrCustomerNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return customer, nil
}

func (m *mockCustomerRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Customer, int, error) {
	out := make([]*domain.Customer, 0, len(m.customers))
	for _, customer := range m.customers {
		out = append(out, customer)
	}
	return out, len(out), nil
}

func (m *mockCustomerRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error) {
	return m.List(ctx, page, pageSize)
}

func (m *mockCustomerRepository) Count(ctx context.Context) (int, error) {
	return len(m.customers), nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, category *string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	out := make([]*domain.Product, 0, len(m.products))
	for _, product := range m.products {
		out = append(out, product)
	}
	return out, len(out), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return m.List(ctx, nil, page, pageSize, "", "")
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

// mockSaleRepository mirrors the transactional contract of the real
// repository: either every effect of a sale lands or none do, and a
// replayed idempotency key returns the stored sale untouched.
type mockSaleRepository struct {
	products  map[uuid.UUID]*domain.Product
	customers map[uuid.UUID]*domain.Customer
	employees map[uuid.UUID]*domain.Employee
	sales     map[uuid.UUID]*domain.Sale
	byKey     map[string]uuid.UUID
	items     map[uuid.UUID][]domain.SaleItem
}

func newMockSaleRepository(
	products *mockProductRepository,
	customers *mockCustomerRepository,
	employees *mockEmployeeRepository,
) *mockSaleRepository {
	return &mockSaleRepository{
		products:  products.products,
		customers: customers.customers,
		employees: employees.employees,
		sales:     make(map[uuid.UUID]*domain.Sale),
		byKey:     make(map[string]uuid.UUID),
		items:     make(map[uuid.UUID][]domain.SaleItem),
	}
}

func (m *mockSaleRepository) CompleteSale(ctx context.Context, sale *domain.Sale, lines []domain.SaleLine) (*domain.Sale, []domain.SaleItem, error) {
	if existingID, ok := m.byKey[sale.IdempotencyKey]; ok {
		return m.sales[existingID], m.items[existingID], nil
	}

	quantities := make(map[uuid.UUID]int)
	for _, line := range lines {
		quantities[line.ProductID] += line.Quantity
	}

	var total float64
	for id, qty := range quantities {
		product, ok := m.products[id]
		if !ok {
			return nil, nil, repository.ErrProductNotFound
		}
		if qty > product.Stock {
			return nil, nil, repository.ErrInsufficientStock
		}
		total += float64(qty) * product.SalePrice
	}

	if sale.PaymentMethod == domain.PaymentLoan {
		if sale.CustomerID == nil {
			return nil, nil, repository.ErrCustomerNotFound
		}
		if _, ok := m.customers[*sale.CustomerID]; !ok {
			return nil, nil, repository.ErrCustomerNotFound
		}
	}

	for id, qty := range quantities {
		m.products[id].Stock -= qty
	}

	sale.TotalAmount = total
	m.sales[sale.ID] = sale
	m.byKey[sale.IdempotencyKey] = sale.ID

	items := make([]domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.SaleItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtSale: m.products[line.ProductID].SalePrice,
		})
	}
	m.items[sale.ID] = items

	if sale.PaymentMethod == domain.PaymentLoan {
		m.customers[*sale.CustomerID].LoanBalance += total
	}

	return sale, items, nil
}

func (m *mockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	return sale, nil
}

func (m *mockSaleRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Sale, error) {
	id, ok := m.byKey[key]
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	return m.sales[id], nil
}

func (m *mockSaleRepository) ListItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error) {
	return m.items[saleID], nil
}

func (m *mockSaleRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	for _, sale := range m.sales {
		total += sale.TotalAmount
	}
	return total, nil
}

func (m *mockSaleRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Sale, error) {
	out := []*domain.Sale{}
	for _, sale := range m.sales {
		if !sale.CreatedAt.Before(since) {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSaleRepository) RecentSales(ctx context.Context, limit int) ([]*repository.RecentSale, error) {
	sales := make([]*domain.Sale, 0, len(m.sales))
	for _, sale := range m.sales {
		sales = append(sales, sale)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].CreatedAt.After(sales[j].CreatedAt) })
	if len(sales) > limit {
		sales = sales[:limit]
	}

	out := make([]*repository.RecentSale, 0, len(sales))
	for _, sale := range sales {
		row := &repository.RecentSale{
			ID:            sale.ID,
			TotalAmount:   sale.TotalAmount,
			PaymentMethod: sale.PaymentMethod,
			CreatedAt:     sale.CreatedAt,
		}
		if sale.CustomerID != nil {
			if customer, ok := m.customers[*sale.CustomerID]; ok {
				row.CustomerName = &customer.Name
			}
		}
		if sale.EmployeeID != nil {
			if employee, ok := m.employees[*sale.EmployeeID]; ok {
				row.EmployeeName = &employee.Name
			}
		}
		out = append(out, row)
	}
	return out, nil
}
