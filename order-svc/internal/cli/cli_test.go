package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	httpapi "flash-delivery/order-svc/internal/api/http"
	"flash-delivery/order-svc/internal/client"
	"flash-delivery/order-svc/internal/domain"
	"flash-delivery/order-svc/internal/service"
	"flash-delivery/order-svc/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword = "changeme123"
	testSalt     = "flashdelivery"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	catalog, err := service.LoadCatalog("")
	require.NoError(t, err)
	repo, err := storage.NewFileRepository(t.TempDir())
	require.NoError(t, err)

	orders := service.NewOrderService(repo, catalog, nil, nil, nil, service.TrackingQRGenerator{BaseURL: "http://localhost:8080"})
	auth := service.NewStaticTokenAuth(testPassword, testSalt)
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(orders, catalog, auth, nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func placeOrder(t *testing.T, api string, extra ...string) string {
	t.Helper()
	args := append([]string{"--api", api, "--json", "order", "--address", "12 Teheran-ro", "--phone", "010-1234-5678", "--item", "1x2"}, extra...)
	out, _, err := execute(t, args...)
	require.NoError(t, err)

	var body struct {
		Created    bool   `json:"created"`
		TrackingID string `json:"tracking_uuid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.NotEmpty(t, body.TrackingID)
	return body.TrackingID
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"menus"}, {"order"}, {"track"},
		{"admin", "login"}, {"admin", "orders"}, {"admin", "status"}, {"admin", "stats"},
	}

	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestMenusCommand(t *testing.T) {
	api := newAPI(t)

	out, _, err := execute(t, "--api", api.URL, "menus")

	require.NoError(t, err)
	assert.Contains(t, out, "Classic Wagyu Cheeseburger")
	assert.Contains(t, out, "12,900원")
	assert.Contains(t, out, "Nitro Cold Brew (sold out)")
}

func TestOrderCommand(t *testing.T) {
	api := newAPI(t)

	out, _, err := execute(t, "--api", api.URL, "order",
		"--address", "12 Teheran-ro", "--phone", "010-1234-5678",
		"--item", "1x2", "--option", "1:patty=patty_double", "--key", "retry-42")
	require.NoError(t, err)
	assert.Contains(t, out, "order placed: ")

	out, _, err = execute(t, "--api", api.URL, "order",
		"--address", "12 Teheran-ro", "--phone", "010-1234-5678",
		"--item", "1x2", "--key", "retry-42")
	require.NoError(t, err)
	assert.Contains(t, out, "order already placed for key retry-42")

	orders, err := client.New(api.URL, service.AdminToken(testPassword, testSalt)).AdminOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, (12900+3900)*2, orders[0].TotalPrice)
}

func TestOrderCommandRejectsBadItems(t *testing.T) {
	_, _, err := execute(t, "--api", "http://127.0.0.1:1", "order",
		"--address", "a", "--phone", "1", "--item", "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --item")
}

func TestTrackCommand(t *testing.T) {
	api := newAPI(t)
	trackingID := placeOrder(t, api.URL)
	token := service.AdminToken(testPassword, testSalt)

	_, _, err := execute(t, "--api", api.URL, "--token", token, "admin", "status", "1", "canceled")
	require.NoError(t, err)

	out, _, err := execute(t, "--api", api.URL, "track", trackingID)

	require.NoError(t, err)
	assert.Contains(t, out, "order #1 canceled")
}

func TestTrackCommandUnknownOrder(t *testing.T) {
	api := newAPI(t)

	_, _, err := execute(t, "--api", api.URL, "track", "doesnotexist")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no order with tracking id doesnotexist")
}

func TestAdminCommands(t *testing.T) {
	api := newAPI(t)
	placeOrder(t, api.URL)

	out, _, err := execute(t, "--api", api.URL, "admin", "login", "--password", testPassword)
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	assert.Equal(t, service.AdminToken(testPassword, testSalt), token)

	_, _, err = execute(t, "--api", api.URL, "admin", "login", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_credentials")

	tests := []struct {
		name        string
		status      string
		eta         []string
		wantWarning string
	}{
		{name: "next step", status: "accepted", eta: []string{"--eta", "30"}},
		{name: "skips ahead", status: "arrived", wantWarning: "out of sequence"},
		{name: "unknown status", status: "lost", wantWarning: "not a known status"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			args := append([]string{"--api", api.URL, "--token", token, "admin", "status", "1", testCase.status}, testCase.eta...)
			out, errOut, err := execute(t, args...)

			require.NoError(t, err)
			assert.Contains(t, out, "order #1 is now "+testCase.status)
			if testCase.wantWarning == "" {
				assert.Empty(t, errOut)
			} else {
				assert.Contains(t, errOut, testCase.wantWarning)
			}
		})
	}

	out, _, err = execute(t, "--api", api.URL, "--token", token, "admin", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "lost")
	assert.Contains(t, out, "01012345678")

	_, _, err = execute(t, "--api", api.URL, "admin", "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")

	_, _, err = execute(t, "--api", api.URL, "--token", token, "admin", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stats_unavailable")
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []string
		options []string
		want    []client.LineItem
		wantErr string
	}{
		{
			name:  "plain and quantity",
			items: []string{"1", "2x3"},
			want: []client.LineItem{
				{MenuID: 1, Quantity: 1, Options: []domain.OptionSelection{}},
				{MenuID: 2, Quantity: 3, Options: []domain.OptionSelection{}},
			},
		},
		{
			name:    "options attach to their menu",
			items:   []string{"1X2"},
			options: []string{"1:patty=patty_double", "1:cheese=cheddar,gouda"},
			want: []client.LineItem{
				{MenuID: 1, Quantity: 2, Options: []domain.OptionSelection{
					{OptionID: "patty", ChoiceIDs: []string{"patty_double"}},
					{OptionID: "cheese", ChoiceIDs: []string{"cheddar", "gouda"}},
				}},
			},
		},
		{name: "bad menu id", items: []string{"burger"}, wantErr: "menu id"},
		{name: "zero quantity", items: []string{"1x0"}, wantErr: "quantity"},
		{name: "malformed option", items: []string{"1"}, options: []string{"1-patty"}, wantErr: "invalid --option"},
		{name: "option without item", items: []string{"1"}, options: []string{"2:size=large"}, wantErr: "no --item for menu 2"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := parseItems(testCase.items, testCase.options)
			if testCase.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestFormatWon(t *testing.T) {
	assert.Equal(t, "0원", formatWon(0))
	assert.Equal(t, "900원", formatWon(900))
	assert.Equal(t, "12,900원", formatWon(12900))
	assert.Equal(t, "1,234,567원", formatWon(1234567))
	assert.Equal(t, "-5,000원", formatWon(-5000))
}
