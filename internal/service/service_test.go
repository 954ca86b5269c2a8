package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/washerman-panel/internal/gateway"
	"github.com/mmeshcher/washerman-panel/internal/model"
	"github.com/mmeshcher/washerman-panel/internal/session"
)

type stubGateway struct {
	loginData *gateway.LoginData
	loginErr  error

	orders    []model.Order
	ordersErr error
	ordersFn  func() ([]model.Order, error)

	order    *model.Order
	orderErr error

	updatedWith string
	updateCalls int
	updateErr   error

	passwordErr error
}

func (g *stubGateway) Login(ctx context.Context, username, password string) (*gateway.LoginData, error) {
	return g.loginData, g.loginErr
}

func (g *stubGateway) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	return &model.DashboardStats{}, nil
}

func (g *stubGateway) AllOrders(ctx context.Context) ([]model.Order, error) {
	if g.ordersFn != nil {
		return g.ordersFn()
	}
	return g.orders, g.ordersErr
}

func (g *stubGateway) PendingOrders(ctx context.Context) ([]model.Order, error) {
	return g.orders, g.ordersErr
}

func (g *stubGateway) Order(ctx context.Context, id int64) (*model.Order, error) {
	return g.order, g.orderErr
}

func (g *stubGateway) UpdateOrderStatus(ctx context.Context, id int64, wireStatus string) (*model.Order, error) {
	g.updateCalls++
	g.updatedWith = wireStatus
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	return g.order, nil
}

func (g *stubGateway) UpdateOrder(ctx context.Context, id int64, update model.OrderUpdate) (*model.Order, error) {
	return g.order, nil
}

func (g *stubGateway) StudentOrders(ctx context.Context, bagNo string) ([]model.Order, error) {
	return g.orders, g.ordersErr
}

func (g *stubGateway) StudentByBag(ctx context.Context, bagNo string) (*model.Student, error) {
	return &model.Student{BagNo: bagNo}, nil
}

func (g *stubGateway) Statistics(ctx context.Context, startDate, endDate string) (*model.OrderStatistics, error) {
	return &model.OrderStatistics{}, nil
}

func (g *stubGateway) ChangePassword(ctx context.Context, current, next string) error {
	return g.passwordErr
}

func newTestService(t *testing.T, gw Gateway) *Service {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return NewService(gw, store, zap.NewNop())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestService(t, &stubGateway{loginErr: gateway.ErrUnauthorized})

	_, err := svc.Login(context.Background(), "dhobi", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("failed login must not create a session")
	}
}

func TestLogin_ServerError(t *testing.T) {
	svc := newTestService(t, &stubGateway{
		loginErr: &gateway.APIError{StatusCode: 502, Message: gateway.MsgServerError},
	})

	_, err := svc.Login(context.Background(), "dhobi", "pass")
	if err == nil || err.Error() != gateway.MsgServerError {
		t.Fatalf("expected server error message, got %v", err)
	}
}

func TestLogin_ConnectivityError(t *testing.T) {
	svc := newTestService(t, &stubGateway{
		loginErr: &gateway.APIError{Message: gateway.MsgConnectivity},
	})

	_, err := svc.Login(context.Background(), "dhobi", "pass")
	if err == nil || err.Error() != gateway.MsgConnectivity {
		t.Fatalf("expected connectivity message, got %v", err)
	}
}

func TestLogin_SuccessStoresSession(t *testing.T) {
	svc := newTestService(t, &stubGateway{
		loginData: &gateway.LoginData{ID: 3, Username: "dhobi"},
	})

	sess, err := svc.Login(context.Background(), "dhobi", "pass")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if sess.User.Role != model.RoleWasherman {
		t.Fatalf("role = %s, want washerman", sess.User.Role)
	}

	user, ok := svc.CurrentUser()
	if !ok || user.Username != "dhobi" {
		t.Fatalf("expected current user after login, got %+v", user)
	}
}

func TestForceLogout_Idempotent(t *testing.T) {
	svc := newTestService(t, &stubGateway{
		loginData: &gateway.LoginData{ID: 3, Username: "dhobi"},
	})
	if _, err := svc.Login(context.Background(), "dhobi", "pass"); err != nil {
		t.Fatalf("Login error: %v", err)
	}

	svc.ForceLogout()
	svc.ForceLogout()

	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("expected no session after forced logout")
	}
}

func TestAdvanceOrder_SendsLowercaseNextStatus(t *testing.T) {
	gw := &stubGateway{
		order: &model.Order{ID: 42, Status: model.OrderStatusPending},
	}
	svc := newTestService(t, gw)

	next, err := svc.AdvanceOrder(context.Background(), 42)
	if err != nil {
		t.Fatalf("AdvanceOrder error: %v", err)
	}
	if next != model.OrderStatusInProgress {
		t.Fatalf("next = %s, want INPROGRESS", next)
	}
	if gw.updatedWith != "inprogress" {
		t.Fatalf("wire status = %q, want lowercase", gw.updatedWith)
	}
}

func TestAdvanceOrder_CompleteIsRejectedWithoutCall(t *testing.T) {
	gw := &stubGateway{
		order: &model.Order{ID: 42, Status: model.OrderStatusComplete},
	}
	svc := newTestService(t, gw)

	_, err := svc.AdvanceOrder(context.Background(), 42)
	if !errors.Is(err, ErrNotAdvanceable) {
		t.Fatalf("expected ErrNotAdvanceable, got %v", err)
	}
	if gw.updateCalls != 0 {
		t.Fatalf("update must not be called for COMPLETE order")
	}
}

func TestAdvanceOrder_FailureSurfacesServerMessage(t *testing.T) {
	gw := &stubGateway{
		order:     &model.Order{ID: 42, Status: model.OrderStatusInProgress},
		updateErr: &gateway.APIError{StatusCode: 400, Message: "bag is locked"},
	}
	svc := newTestService(t, gw)

	_, err := svc.AdvanceOrder(context.Background(), 42)
	if err == nil {
		t.Fatalf("expected error")
	}
	if gateway.Message(err) != "bag is locked" {
		t.Fatalf("message = %q, want server text", gateway.Message(err))
	}
	if gw.updateCalls != 1 {
		t.Fatalf("no retry allowed for failed advance, calls = %d", gw.updateCalls)
	}
}

func TestOrders_StaleResponseDiscarded(t *testing.T) {
	// Первый запрос стартует раньше, но завершается позже второго: его
	// устаревший ответ должен быть отброшен в пользу более свежего.
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	old := []model.Order{{ID: 1, Status: model.OrderStatusPending}}
	fresh := []model.Order{{ID: 2, Status: model.OrderStatusComplete}}

	var calls int
	var mu sync.Mutex

	gw := &stubGateway{}
	gw.ordersFn = func() ([]model.Order, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			return old, nil
		}
		return fresh, nil
	}

	svc := newTestService(t, gw)

	var wg sync.WaitGroup
	results := make([][]model.Order, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.Orders(context.Background())
	}()

	<-firstStarted

	var err error
	results[1], err = svc.Orders(context.Background())
	if err != nil {
		t.Fatalf("second fetch error: %v", err)
	}

	close(releaseFirst)
	wg.Wait()

	for i, got := range results {
		if len(got) != 1 || got[0].ID != 2 {
			t.Fatalf("result %d = %+v, want the fresh snapshot", i, got)
		}
	}
}

func TestChangePassword_ValidatesLength(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(t, gw)

	if err := svc.ChangePassword(context.Background(), "old", "short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := svc.ChangePassword(context.Background(), "old", "longenough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
