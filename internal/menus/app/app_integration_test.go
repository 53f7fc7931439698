//go:build integration

package app_test

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/app"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type MenusSuite struct {
	suite.Suite
	containers []testcontainers.Container
	cfg        config.Config
	baseURL    string
	pool       *pgxpool.Pool
	cancel     context.CancelFunc
	done       chan struct{}
}

func startContainer(ctx context.Context, req testcontainers.ContainerRequest, port string) (testcontainers.Container, string, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("start %s: %w", req.Image, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		return c, "", fmt.Errorf("host: %w", err)
	}

	p, err := c.MappedPort(ctx, port)
	if err != nil {
		return c, "", fmt.Errorf("mapped port: %w", err)
	}

	return c, net.JoinHostPort(host, p.Port()), nil
}

func freeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()

	return l.Addr().String(), nil
}

func (ms *MenusSuite) SetupSuite() {
	ctx := context.Background()

	pg, pgAddr, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "menus",
			"POSTGRES_PASSWORD": "menus",
			"POSTGRES_DB":       "menus",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(time.Minute),
	}, "5432")
	if pg != nil {
		ms.containers = append(ms.containers, pg)
	}

	ms.Require().NoError(err)

	rd, redisAddr, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
	}, "6379")
	if rd != nil {
		ms.containers = append(ms.containers, rd)
	}

	ms.Require().NoError(err)

	addr, err := freeAddr()
	ms.Require().NoError(err)

	ms.cfg = config.Config{ //nolint:exhaustruct
		Server: config.Server{Addr: addr, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: 30 * time.Second},
		Logger: config.Logger{Level: "error"}, //nolint:exhaustruct
		PostgresDB: config.PostgresDB{ //nolint:exhaustruct
			Addr: pgAddr, Username: "menus", Password: "menus", DB: "menus", SSLmode: "disable", MaxConns: "5",
		},
		Auth:      config.Auth{TTL: time.Hour, Secret: "integration-secret"},
		Redis:     config.Redis{Addr: redisAddr}, //nolint:exhaustruct
		Catalog:   config.Catalog{TTL: time.Hour},
		Stats:     config.Stats{TTL: time.Minute},
		RateLimit: config.RateLimit{Disabled: true}, //nolint:exhaustruct
		CORS:      config.CORS{AllowedOrigins: []string{"*"}},
		Events:    config.Events{Queue: "menus.changed"},                     //nolint:exhaustruct
		Bootstrap: config.Bootstrap{Username: "admin", Password: "admin123"}, //nolint:exhaustruct
	}

	runCtx, cancel := context.WithCancel(ctx)
	ms.cancel = cancel
	ms.done = make(chan struct{})

	a, err := app.New(runCtx, ms.cfg)
	ms.Require().NoError(err)

	go func() {
		defer close(ms.done)
		a.Run(runCtx)
	}()

	ms.baseURL = "http://" + addr

	ms.Require().Eventually(func() bool {
		resp, err := http.Get(ms.baseURL + "/api/health") //nolint:noctx
		if err != nil {
			return false
		}
		resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 30*time.Second, 200*time.Millisecond)

	ms.pool, err = pgxpool.New(ctx, ms.cfg.PostgresDB.ConnString())
	ms.Require().NoError(err)
}

func (ms *MenusSuite) TearDownSuite() {
	if ms.cancel != nil {
		ms.cancel()
		<-ms.done
	}

	if ms.pool != nil {
		ms.pool.Close()
	}

	for _, c := range ms.containers {
		c.Terminate(context.Background()) //nolint:errcheck
	}
}

func (ms *MenusSuite) call(method, path, token string, body any) (int, []byte) {
	var buf bytes.Buffer
	if body != nil {
		ms.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequestWithContext(context.Background(), method, ms.baseURL+path, &buf)
	ms.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	ms.Require().NoError(err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	ms.Require().NoError(err)

	return resp.StatusCode, out.Bytes()
}

func (ms *MenusSuite) token(username, password string) string {
	code, body := ms.call(http.MethodPost, "/auth/register", "", map[string]string{"username": username, "password": password})
	ms.Require().Contains([]int{http.StatusCreated, http.StatusConflict}, code, string(body))

	code, body = ms.call(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password})
	ms.Require().Equal(http.StatusOK, code, string(body))

	var resp struct {
		AccessToken string `json:"access_token"` //nolint:tagliatelle
	}
	ms.Require().NoError(json.Unmarshal(body, &resp))

	return resp.AccessToken
}

func (ms *MenusSuite) count(query string, args ...any) int {
	var n int
	ms.Require().NoError(ms.pool.QueryRow(context.Background(), query, args...).Scan(&n))

	return n
}

func (ms *MenusSuite) TestScenario() {
	alice := ms.token("alice", "pw1")

	code, body := ms.call(http.MethodPost, "/api/menus", alice, map[string]string{"title": "Lunch"})
	ms.Require().Equal(http.StatusCreated, code, string(body))

	var created struct {
		ID int64 `json:"id"`
	}
	ms.Require().NoError(json.Unmarshal(body, &created))
	menuID := created.ID

	code, body = ms.call(http.MethodPost, fmt.Sprintf("/api/menus/%d/dishes", menuID), alice, map[string]any{
		"name": "Soup", "salty": 3, "umami": 4,
		"colors":      []string{"#ff8800"},
		"emotion_ids": []int{1, 2},
		"texture_ids": []int{3},
		"shape_ids":   []int{1},
	})
	ms.Require().Equal(http.StatusCreated, code, string(body))
	ms.Require().NoError(json.Unmarshal(body, &created))
	dishID := created.ID

	code, body = ms.call(http.MethodGet, fmt.Sprintf("/api/dishes/%d", dishID), alice, nil)
	ms.Require().Equal(http.StatusOK, code)
	ms.Require().Contains(string(body), `"colors":["#ff8800"]`)

	bob := ms.token("bob", "pw2")

	code, _ = ms.call(http.MethodGet, fmt.Sprintf("/api/menus/%d", menuID), bob, nil)
	ms.Require().Equal(http.StatusForbidden, code)

	code, _ = ms.call(http.MethodPut, fmt.Sprintf("/api/dishes/%d", dishID), bob, map[string]string{"name": "Stew"})
	ms.Require().Equal(http.StatusForbidden, code)

	code, _ = ms.call(http.MethodPost, fmt.Sprintf("/api/menus/%d/dishes", menuID), alice, map[string]any{"name": "Bad", "sour": 6})
	ms.Require().Equal(http.StatusBadRequest, code)
	ms.Require().Equal(1, ms.count("SELECT COUNT(*) FROM dishes WHERE menu_id = $1", menuID))

	code, _ = ms.call(http.MethodDelete, fmt.Sprintf("/api/menus/%d", menuID), alice, nil)
	ms.Require().Equal(http.StatusOK, code)

	code, _ = ms.call(http.MethodGet, fmt.Sprintf("/api/dishes/%d", dishID), alice, nil)
	ms.Require().Equal(http.StatusNotFound, code)

	ms.Require().Zero(ms.count("SELECT COUNT(*) FROM dish_emotions WHERE dish_id = $1", dishID))
	ms.Require().Zero(ms.count("SELECT COUNT(*) FROM dish_textures WHERE dish_id = $1", dishID))
	ms.Require().Zero(ms.count("SELECT COUNT(*) FROM dish_shapes WHERE dish_id = $1", dishID))
}

func (ms *MenusSuite) TestCatalogAndAdmin() {
	admin := ms.token("admin", "admin123")

	code, body := ms.call(http.MethodGet, "/api/emotions", admin, nil)
	ms.Require().Equal(http.StatusOK, code)

	var emotions []map[string]any
	ms.Require().NoError(json.Unmarshal(body, &emotions))
	ms.Require().Len(emotions, 9)

	code, _ = ms.call(http.MethodGet, "/admin/stats", admin, nil)
	ms.Require().Equal(http.StatusOK, code)

	code, body = ms.call(http.MethodGet, "/admin/request-logs?limit=5", admin, nil)
	ms.Require().Equal(http.StatusOK, code)

	var logs []map[string]any
	ms.Require().NoError(json.Unmarshal(body, &logs))
	ms.Require().NotEmpty(logs)
	ms.Require().LessOrEqual(len(logs), 5)

	code, _ = ms.call(http.MethodGet, "/admin/request-logs/daily", admin, nil)
	ms.Require().Equal(http.StatusOK, code)
}

func (ms *MenusSuite) TestLogout() {
	carol := ms.token("carol", "pw3")

	code, _ := ms.call(http.MethodPost, "/auth/logout", carol, nil)
	ms.Require().Equal(http.StatusOK, code)

	code, _ = ms.call(http.MethodGet, "/auth/me", carol, nil)
	ms.Require().Equal(http.StatusUnauthorized, code)
}

func (ms *MenusSuite) redisClients(rdb *redis.Client) int {
	list, err := rdb.ClientList(context.Background()).Result()
	ms.Require().NoError(err)

	return strings.Count(strings.TrimSpace(list), "\n") + 1
}

func (ms *MenusSuite) TestFailedStartReleasesConnections() {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: ms.cfg.Redis.Addr}) //nolint:exhaustruct
	defer rdb.Close()

	const backends = `SELECT count(*) FROM pg_stat_activity WHERE datname = 'menus' AND backend_type = 'client backend'`

	pgBefore := ms.count(backends)
	redisBefore := ms.redisClients(rdb)

	cfg := ms.cfg
	cfg.Bootstrap = config.Bootstrap{Username: "broken-admin"} //nolint:exhaustruct

	_, err := app.New(ctx, cfg)
	ms.Require().Error(err)

	ms.Require().Eventually(func() bool {
		return ms.count(backends) == pgBefore && ms.redisClients(rdb) == redisBefore
	}, 5*time.Second, 100*time.Millisecond)
}

func TestMenusSuite(t *testing.T) {
	suite.Run(t, new(MenusSuite))
}
