package payment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"rendsocial/app/models"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(user *models.User) error { f.users[user.ID] = user; return nil }
func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByEmail(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetByUsername(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) Update(*models.User) error { return nil }
func (f *fakeUserRepo) Delete(uint) error         { return nil }
func (f *fakeUserRepo) Count() (int64, error)     { return int64(len(f.users)), nil }

type fakeMembershipRepo struct {
	memberships map[uint]*models.Membership
}

func (f *fakeMembershipRepo) Create(m *models.Membership) error { f.memberships[m.ID] = m; return nil }
func (f *fakeMembershipRepo) GetByID(id uint) (*models.Membership, error) {
	m, ok := f.memberships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}
func (f *fakeMembershipRepo) GetByUserID(uint) (*models.Membership, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMembershipRepo) Update(*models.Membership) error { return nil }

// fakeTransactionRepo mimics the constrained-insert and guarded-update
// semantics of the real store.
type fakeTransactionRepo struct {
	mu      sync.Mutex
	byOrder map[string]*models.Transaction
	byPair  map[[2]uint]*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		byOrder: make(map[string]*models.Transaction),
		byPair:  make(map[[2]uint]*models.Transaction),
	}
}

func (f *fakeTransactionRepo) CreateIfAbsent(tx *models.Transaction) (bool, *models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint{tx.UserID, tx.MembershipID}
	if existing, ok := f.byPair[key]; ok {
		return false, existing, nil
	}
	cp := *tx
	f.byPair[key] = &cp
	f.byOrder[cp.OrderID] = &cp
	return true, &cp, nil
}

func (f *fakeTransactionRepo) GetByOrderID(orderID string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byOrder[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeTransactionRepo) GetByUserAndMembership(userID, membershipID uint) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byPair[[2]uint{userID, membershipID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeTransactionRepo) UpdateStatusIfPending(orderID, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byOrder[orderID]
	if !ok || tx.Status != models.TransactionStatusPending {
		return false, nil
	}
	tx.Status = status
	return true, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	createCalls int
	statusCalls int
	failCreate  error
	status      string
}

func (f *fakeGateway) CreateTransaction(_ context.Context, in CreateTransactionInput) (*GatewayTransaction, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	return &GatewayTransaction{
		Token:       "tok-" + in.OrderID,
		RedirectURL: "https://pay.example/" + in.OrderID,
	}, nil
}

func (f *fakeGateway) TransactionStatus(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	f.statusCalls++
	f.mu.Unlock()
	if f.status == "" {
		return "pending", nil
	}
	return f.status, nil
}

func newTestService() (*Service, *fakeTransactionRepo, *fakeGateway) {
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice", Name: "Alice", Email: "alice@example.com"},
		2: {ID: 2, Username: "bob", Name: "Bob", Email: "bob@example.com"},
	}}
	memberships := &fakeMembershipRepo{memberships: map[uint]*models.Membership{
		7: {ID: 7, UserID: 2, Amount: 5000, User: models.User{ID: 2, Name: "Bob"}},
	}}
	txRepo := newFakeTransactionRepo()
	gw := &fakeGateway{}
	return NewService(users, memberships, txRepo, gw), txRepo, gw
}

func TestCreateTransaction_NewPurchase(t *testing.T) {
	svc, txRepo, gw := newTestService()

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OrderID == "" || result.Token == "" || result.RedirectURL == "" {
		t.Fatalf("incomplete result: %+v", result)
	}
	if result.Status != models.TransactionStatusPending {
		t.Fatalf("expected PENDING, got %s", result.Status)
	}
	if gw.createCalls != 1 {
		t.Fatalf("expected 1 gateway call, got %d", gw.createCalls)
	}

	stored, err := txRepo.GetByOrderID(result.OrderID)
	if err != nil {
		t.Fatalf("stored transaction missing: %v", err)
	}
	if stored.UserID != 1 || stored.MembershipID != 7 {
		t.Fatalf("stored wrong pair: %+v", stored)
	}
}

func TestCreateTransaction_RetryReturnsPendingWithoutGatewayCall(t *testing.T) {
	svc, _, gw := newTestService()

	first, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if second.OrderID != first.OrderID || second.Token != first.Token {
		t.Fatalf("retry returned a different transaction: %+v vs %+v", first, second)
	}
	if gw.createCalls != 1 {
		t.Fatalf("retry must not call the gateway again, got %d calls", gw.createCalls)
	}
}

func TestCreateTransaction_SettledPairConflicts(t *testing.T) {
	svc, txRepo, _ := newTestService()

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := txRepo.UpdateStatusIfPending(result.OrderID, models.TransactionStatusSettled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.CreateTransaction(context.Background(), 1, 7); !errors.Is(err, ErrAlreadyPurchased) {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}
}

func TestCreateTransaction_UnknownMembership(t *testing.T) {
	svc, _, gw := newTestService()

	if _, err := svc.CreateTransaction(context.Background(), 1, 999); !errors.Is(err, ErrMembershipNotFound) {
		t.Fatalf("expected ErrMembershipNotFound, got %v", err)
	}
	if gw.createCalls != 0 {
		t.Fatalf("gateway must not be called for unknown membership")
	}
}

func TestCreateTransaction_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.CreateTransaction(context.Background(), 999, 7); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateTransaction_GatewayFailurePersistsNothing(t *testing.T) {
	svc, txRepo, gw := newTestService()
	gw.failCreate = errors.New("connect timeout")

	_, err := svc.CreateTransaction(context.Background(), 1, 7)
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
	if _, err := txRepo.GetByUserAndMembership(1, 7); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("a failed gateway call must not leave a local row")
	}
}

func TestCreateTransaction_ConcurrentCallersShareOneRow(t *testing.T) {
	svc, txRepo, _ := newTestService()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*CreateTransactionResult, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CreateTransaction(context.Background(), 1, 7)
		}(i)
	}
	wg.Wait()

	var orderID string
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if orderID == "" {
			orderID = results[i].OrderID
		} else if results[i].OrderID != orderID {
			t.Fatalf("callers observed different orders: %s vs %s", orderID, results[i].OrderID)
		}
	}

	if len(txRepo.byPair) != 1 {
		t.Fatalf("expected exactly one stored row, got %d", len(txRepo.byPair))
	}
}

func TestHandleNotification_SettlesPendingTransaction(t *testing.T) {
	svc, txRepo, _ := newTestService()

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := []byte(`{"order_id":"` + result.OrderID + `","transaction_status":"settlement"}`)
	if err := svc.HandleNotification(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := txRepo.GetByOrderID(result.OrderID)
	if stored.Status != models.TransactionStatusSettled {
		t.Fatalf("expected SETTLED, got %s", stored.Status)
	}
}

func TestHandleNotification_ExpiresPendingTransaction(t *testing.T) {
	svc, txRepo, _ := newTestService()

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, status := range []string{"expire", "cancel", "deny", "failure"} {
		payload := []byte(`{"order_id":"` + result.OrderID + `","transaction_status":"` + status + `"}`)
		if err := svc.HandleNotification(context.Background(), payload); err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
	}

	stored, _ := txRepo.GetByOrderID(result.OrderID)
	if stored.Status != models.TransactionStatusExpired {
		t.Fatalf("expected EXPIRED, got %s", stored.Status)
	}
}

func TestHandleNotification_UnknownOrderIsAcknowledged(t *testing.T) {
	svc, _, _ := newTestService()

	payload := []byte(`{"order_id":"nope","transaction_status":"settlement"}`)
	if err := svc.HandleNotification(context.Background(), payload); err != nil {
		t.Fatalf("unknown orders must be acknowledged, got %v", err)
	}
}

func TestHandleNotification_TerminalStateNeverReverts(t *testing.T) {
	svc, txRepo, _ := newTestService()

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	settle := []byte(`{"order_id":"` + result.OrderID + `","transaction_status":"settlement"}`)
	if err := svc.HandleNotification(context.Background(), settle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A stale expiry delivered after settlement must be dropped.
	expire := []byte(`{"order_id":"` + result.OrderID + `","transaction_status":"expire"}`)
	if err := svc.HandleNotification(context.Background(), expire); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := txRepo.GetByOrderID(result.OrderID)
	if stored.Status != models.TransactionStatusSettled {
		t.Fatalf("terminal state reverted to %s", stored.Status)
	}

	// Redelivery of the settlement itself is a silent no-op too.
	if err := svc.HandleNotification(context.Background(), settle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleNotification_MalformedPayload(t *testing.T) {
	svc, _, _ := newTestService()

	for _, payload := range []string{
		"not json",
		`{"transaction_status":"settlement"}`,
		`{"order_id":"abc"}`,
	} {
		if err := svc.HandleNotification(context.Background(), []byte(payload)); !errors.Is(err, ErrValidation) {
			t.Fatalf("payload %q: expected ErrValidation, got %v", payload, err)
		}
	}
}

func TestHandleNotification_InformationalStatusIsNoOp(t *testing.T) {
	svc, txRepo, _ := newTestService()

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := []byte(`{"order_id":"` + result.OrderID + `","transaction_status":"pending"}`)
	if err := svc.HandleNotification(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := txRepo.GetByOrderID(result.OrderID)
	if stored.Status != models.TransactionStatusPending {
		t.Fatalf("informational status changed state to %s", stored.Status)
	}
}

func TestHandleNotification_InvalidSignatureIsDropped(t *testing.T) {
	svc, txRepo, _ := newTestService()
	svc.EnableSignatureVerification("server-key")

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := []byte(`{"order_id":"` + result.OrderID + `","transaction_status":"settlement","signature_key":"bogus"}`)
	if err := svc.HandleNotification(context.Background(), payload); err != nil {
		t.Fatalf("invalid signatures must still be acknowledged, got %v", err)
	}

	stored, _ := txRepo.GetByOrderID(result.OrderID)
	if stored.Status != models.TransactionStatusPending {
		t.Fatalf("unverified notification changed state to %s", stored.Status)
	}
}

func TestRemoteStatus_UnknownOrder(t *testing.T) {
	svc, _, gw := newTestService()

	if _, err := svc.RemoteStatus(context.Background(), "missing"); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
	if gw.statusCalls != 0 {
		t.Fatalf("unknown orders must not reach the gateway")
	}
}

func TestRemoteStatus_Passthrough(t *testing.T) {
	svc, _, gw := newTestService()
	gw.status = "settlement"

	result, err := svc.CreateTransaction(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := svc.RemoteStatus(context.Background(), result.OrderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "settlement" {
		t.Fatalf("expected settlement, got %s", status)
	}
}
