package services

// In-memory repository fakes shared by the service tests. Writes ignore the
// SQLExecutor argument; transaction boundaries are covered by sqlmock in the
// tests themselves.

import (
	"database/sql"
	"sort"
	"testing"
	"time"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

// newMockDB returns a sqlmock-backed *sql.DB for services that open
// transactions. The repository calls themselves hit the in-memory fakes, so
// only Begin/Commit reach the driver.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// expectTx queues one Begin/Commit pair, the shape of every mutating
// service call that reaches the database.
func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

// --- fakeRoomRepo ---

type fakeRoomRepo struct {
	rooms  map[int64]*models.Room
	nextID int64
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: map[int64]*models.Room{}, nextID: 1}
}

func (f *fakeRoomRepo) addRoom(room models.Room) *models.Room {
	if room.ID == 0 {
		room.ID = f.nextID
	}
	if room.ID >= f.nextID {
		f.nextID = room.ID + 1
	}
	stored := room
	f.rooms[room.ID] = &stored
	return &stored
}

func (f *fakeRoomRepo) CreateRoom(_ repositories.SQLExecutor, room *models.Room) (*models.Room, error) {
	created := f.addRoom(*room)
	out := *created
	return &out, nil
}

func (f *fakeRoomRepo) GetRoomByID(id int64) (*models.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *room
	return &out, nil
}

func (f *fakeRoomRepo) GetRooms(filters models.RoomFilters) ([]models.Room, error) {
	var out []models.Room
	for _, room := range f.rooms {
		if filters.Status != nil && room.Status != *filters.Status {
			continue
		}
		if filters.ConsoleType != nil && room.ConsoleType != *filters.ConsoleType {
			continue
		}
		out = append(out, *room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRoomRepo) UpdateRoom(_ repositories.SQLExecutor, room *models.Room) (*models.Room, error) {
	if _, ok := f.rooms[room.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	stored := *room
	f.rooms[room.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeRoomRepo) UpdateRoomSession(_ repositories.SQLExecutor, room *models.Room) error {
	if _, ok := f.rooms[room.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *room
	f.rooms[room.ID] = &stored
	return nil
}

func (f *fakeRoomRepo) ClearRoomSession(_ repositories.SQLExecutor, roomID int64, finalCost decimal.Decimal) error {
	room, ok := f.rooms[roomID]
	if !ok {
		return repositories.ErrNotFound
	}
	room.Status = models.RoomStatusAvailable
	room.CurrentCustomerName = nil
	room.CurrentMode = nil
	room.CurrentSessionStart = nil
	room.CurrentSessionEnd = nil
	cost := finalCost
	room.CurrentTotalCost = &cost
	return nil
}

func (f *fakeRoomRepo) UpdateRoomStatus(_ repositories.SQLExecutor, roomID int64, status string) error {
	room, ok := f.rooms[roomID]
	if !ok {
		return repositories.ErrNotFound
	}
	room.Status = status
	return nil
}

func (f *fakeRoomRepo) DeleteRoom(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.rooms[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rooms, id)
	return nil
}

// --- fakeOrderRepo ---

type fakeOrderRepo struct {
	orders    map[int64]*models.Order
	items     map[int64]*models.OrderItem
	nextOrder int64
	nextItem  int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    map[int64]*models.Order{},
		items:     map[int64]*models.OrderItem{},
		nextOrder: 1,
		nextItem:  1,
	}
}

func (f *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) (int64, error) {
	order.ID = f.nextOrder
	f.nextOrder++
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	f.orders[order.ID] = &stored
	return order.ID, nil
}

func (f *fakeOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *order
	return &out, nil
}

func (f *fakeOrderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	var out []models.Order
	for _, order := range f.orders {
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		if filters.RoomID != nil && (order.RoomID == nil || *order.RoomID != *filters.RoomID) {
			continue
		}
		out = append(out, *order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeOrderRepo) GetOrderByRoomAndStatus(roomID int64, status string) (*models.Order, error) {
	var latest *models.Order
	for _, order := range f.orders {
		if order.RoomID == nil || *order.RoomID != roomID || order.Status != status {
			continue
		}
		if latest == nil || order.StartTime.After(latest.StartTime) {
			latest = order
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	out := *latest
	return &out, nil
}

func (f *fakeOrderRepo) UpdateOrder(_ repositories.SQLExecutor, order *models.Order) error {
	if _, ok := f.orders[order.ID]; !ok {
		return repositories.ErrNotFound
	}
	order.UpdatedAt = time.Now()
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ repositories.SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	order, ok := f.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.Status = newStatus
	order.UpdatedAt = updatedAt
	return nil
}

func (f *fakeOrderRepo) UpdateOrderTotal(_ repositories.SQLExecutor, orderID int64, total decimal.Decimal) error {
	order, ok := f.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.TotalAmount = total
	return nil
}

func (f *fakeOrderRepo) DeleteOrder(_ repositories.SQLExecutor, orderID int64) (int64, error) {
	if _, ok := f.orders[orderID]; !ok {
		return 0, repositories.ErrNotFound
	}
	delete(f.orders, orderID)
	return 1, nil
}

func (f *fakeOrderRepo) CreateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	item.ID = f.nextItem
	f.nextItem++
	item.CreatedAt = time.Now()
	stored := *item
	f.items[item.ID] = &stored
	return item.ID, nil
}

func (f *fakeOrderRepo) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, item := range f.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrderRepo) GetLatestRoomTimeItem(orderID int64) (*models.OrderItem, error) {
	var latest *models.OrderItem
	for _, item := range f.items {
		if item.OrderID != orderID || item.ItemType != models.ItemTypeRoomTime {
			continue
		}
		if latest == nil || item.ID > latest.ID {
			latest = item
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	out := *latest
	return &out, nil
}

func (f *fakeOrderRepo) UpdateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) SumOrderItems(_ repositories.SQLExecutor, orderID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range f.items {
		if item.OrderID == orderID {
			total = total.Add(item.TotalPrice)
		}
	}
	return total, nil
}

func (f *fakeOrderRepo) DeleteOrderItemsByOrderID(_ repositories.SQLExecutor, orderID int64) (int64, error) {
	var deleted int64
	for id, item := range f.items {
		if item.OrderID == orderID {
			delete(f.items, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- fakeTransactionRepo ---

type fakeTransactionRepo struct {
	transactions []models.Transaction
	nextID       int64
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{nextID: 1}
}

func (f *fakeTransactionRepo) CreateTransaction(_ repositories.SQLExecutor, transaction *models.Transaction) (int64, error) {
	transaction.ID = f.nextID
	f.nextID++
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	f.transactions = append(f.transactions, *transaction)
	return transaction.ID, nil
}

func (f *fakeTransactionRepo) GetTransactionByID(id int64) (*models.Transaction, error) {
	for _, txn := range f.transactions {
		if txn.ID == id {
			out := txn
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeTransactionRepo) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	var out []models.Transaction
	for _, txn := range f.transactions {
		if filters.OrderID != nil && txn.OrderID != *filters.OrderID {
			continue
		}
		if filters.Type != nil && txn.TransactionType != *filters.Type {
			continue
		}
		out = append(out, txn)
	}
	return out, len(out), nil
}

func (f *fakeTransactionRepo) GetTransactionsByOrderID(orderID int64) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, txn := range f.transactions {
		if txn.OrderID == orderID {
			out = append(out, txn)
		}
	}
	return out, nil
}

// --- fakeCafeProductRepo ---

type fakeCafeProductRepo struct {
	products map[int64]*models.CafeProduct
	nextID   int64
}

func newFakeCafeProductRepo() *fakeCafeProductRepo {
	return &fakeCafeProductRepo{products: map[int64]*models.CafeProduct{}, nextID: 1}
}

func (f *fakeCafeProductRepo) addProduct(product models.CafeProduct) *models.CafeProduct {
	if product.ID == 0 {
		product.ID = f.nextID
	}
	if product.ID >= f.nextID {
		f.nextID = product.ID + 1
	}
	stored := product
	f.products[product.ID] = &stored
	return &stored
}

func (f *fakeCafeProductRepo) CreateProduct(_ repositories.SQLExecutor, product *models.CafeProduct) (*models.CafeProduct, error) {
	created := f.addProduct(*product)
	out := *created
	return &out, nil
}

func (f *fakeCafeProductRepo) GetProductByID(id int64) (*models.CafeProduct, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *product
	return &out, nil
}

func (f *fakeCafeProductRepo) GetProducts(filters models.CafeProductFilters) ([]models.CafeProduct, error) {
	var out []models.CafeProduct
	for _, product := range f.products {
		if filters.Category != nil && product.Category != *filters.Category {
			continue
		}
		if filters.ActiveOnly && !product.Active {
			continue
		}
		out = append(out, *product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCafeProductRepo) UpdateProduct(_ repositories.SQLExecutor, product *models.CafeProduct) (*models.CafeProduct, error) {
	if _, ok := f.products[product.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	stored := *product
	f.products[product.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeCafeProductRepo) AdjustStock(_ repositories.SQLExecutor, productID int64, delta int) (int, error) {
	product, ok := f.products[productID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if product.Stock+delta < 0 {
		return 0, repositories.ErrNotFound
	}
	product.Stock += delta
	return product.Stock, nil
}

func (f *fakeCafeProductRepo) DeleteProduct(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

// --- fakeAppointmentRepo ---

type fakeAppointmentRepo struct {
	appointments map[int64]*models.Appointment
	nextID       int64
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[int64]*models.Appointment{}, nextID: 1}
}

func (f *fakeAppointmentRepo) CreateAppointment(_ repositories.SQLExecutor, appointment *models.Appointment) (*models.Appointment, error) {
	appointment.ID = f.nextID
	f.nextID++
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	stored := *appointment
	f.appointments[appointment.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeAppointmentRepo) GetAppointmentByID(id int64) (*models.Appointment, error) {
	appointment, ok := f.appointments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *appointment
	return &out, nil
}

func (f *fakeAppointmentRepo) GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	var out []models.Appointment
	for _, appointment := range f.appointments {
		if filters.RoomID != nil && appointment.RoomID != *filters.RoomID {
			continue
		}
		if filters.Date != nil && appointment.AppointmentDate != *filters.Date {
			continue
		}
		if filters.Status != nil && appointment.Status != *filters.Status {
			continue
		}
		out = append(out, *appointment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeAppointmentRepo) GetAppointmentsForRoomDate(roomID int64, date string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appointment := range f.appointments {
		if appointment.RoomID != roomID || appointment.AppointmentDate != date {
			continue
		}
		if appointment.Status == models.AppointmentStatusCancelled {
			continue
		}
		out = append(out, *appointment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateAppointment(_ repositories.SQLExecutor, appointment *models.Appointment) (*models.Appointment, error) {
	if _, ok := f.appointments[appointment.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	appointment.UpdatedAt = time.Now()
	stored := *appointment
	f.appointments[appointment.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeAppointmentRepo) UpdateAppointmentStatus(_ repositories.SQLExecutor, id int64, status string) error {
	appointment, ok := f.appointments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	appointment.Status = status
	return nil
}

func (f *fakeAppointmentRepo) DeleteAppointment(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.appointments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.appointments, id)
	return nil
}
