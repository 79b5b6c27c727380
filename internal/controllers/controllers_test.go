package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/pizza-admin/internal/database"
	"github.com/franciscosanchezn/pizza-admin/internal/middleware"
	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/franciscosanchezn/pizza-admin/internal/services"
	"github.com/franciscosanchezn/pizza-admin/internal/topping"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

// flakyStore fails updates of the listed pizza ids and any update whose
// context is already done
type flakyStore struct {
	services.PizzaService
	fail map[int]bool
}

func (s *flakyStore) UpdatePizza(ctx context.Context, pizza models.Pizza) (models.Pizza, error) {
	if err := ctx.Err(); err != nil {
		return models.Pizza{}, err
	}
	if s.fail[pizza.ID] {
		return models.Pizza{}, errors.New("connection reset")
	}
	return s.PizzaService.UpdatePizza(ctx, pizza)
}

type testAPI struct {
	router *gin.Engine
	pizzas services.PizzaService
	store  *flakyStore
}

func newTestAPI(t *testing.T, pizzas ...models.Pizza) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	pizzaService := services.NewPizzaService(db)
	for _, p := range pizzas {
		_, err := pizzaService.CreatePizza(context.Background(), p)
		require.NoError(t, err)
	}
	store := &flakyStore{PizzaService: pizzaService, fail: map[int]bool{}}

	pizzaController := NewPizzaController(pizzaService)
	toppingController := NewToppingController(store, topping.NewCoordinator(store, 2))
	baseController := NewBaseController(services.NewBaseService(db))
	clientController := NewClientController(services.NewClientService(db))

	router := gin.New()
	// Stand-in for OAuth2Auth
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uint(42))
		c.Next()
	})
	api := router.Group("/api")
	api.GET("/pizzas", pizzaController.ListPizzas)
	api.GET("/pizzas/:id", pizzaController.GetPizzaByID)
	api.POST("/pizzas", pizzaController.CreatePizza)
	api.PUT("/pizzas/:id", pizzaController.UpdatePizza)
	api.DELETE("/pizzas/:id", pizzaController.DeletePizza)
	api.GET("/bases", baseController.ListBases)
	api.POST("/bases", baseController.CreateBase)
	api.GET("/toppings", toppingController.ListToppings)
	api.PUT("/toppings/:name", toppingController.RenameTopping)
	api.DELETE("/toppings", toppingController.DeleteToppings)
	api.GET("/clients", clientController.ListClients)
	api.POST("/clients", clientController.CreateClient)
	api.DELETE("/clients/:id", clientController.DeleteClient)

	return &testAPI{router: router, pizzas: pizzaService, store: store}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func examplePizzas() []models.Pizza {
	return []models.Pizza{
		{Name: "Hawaii", Toppings: []string{"Mozzarella", "Ham"}},
		{Name: "Olive", Toppings: []string{"ham", "Olives"}},
		{Name: "Marinara", Toppings: []string{"Garlic"}},
	}
}

func TestPizzaRoutes(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)

	w := api.do(http.MethodGet, "/api/pizzas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Pizza](t, w), 3)

	w = api.do(http.MethodPost, "/api/pizzas", models.Pizza{Name: "Diavola", Toppings: []string{"Salami"}})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Pizza](t, w)
	assert.Equal(t, uint(42), created.CreatedBy)

	created.Toppings = []string{"Spicy Salami"}
	w = api.do(http.MethodPut, "/api/pizzas/4", created)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Spicy Salami"}, decode[models.Pizza](t, w).Toppings)

	w = api.do(http.MethodGet, "/api/pizzas/4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Diavola", decode[models.Pizza](t, w).Name)

	w = api.do(http.MethodDelete, "/api/pizzas/4", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPizzaRouteErrors(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{name: "bad id", method: http.MethodGet, path: "/api/pizzas/abc", status: http.StatusBadRequest, code: models.ErrBadRequest},
		{name: "missing pizza", method: http.MethodGet, path: "/api/pizzas/99", status: http.StatusNotFound, code: models.ErrPizzaNotFound},
		{name: "update missing", method: http.MethodPut, path: "/api/pizzas/99", body: models.Pizza{Name: "x"}, status: http.StatusNotFound, code: models.ErrPizzaNotFound},
		{name: "update bad body", method: http.MethodPut, path: "/api/pizzas/1", body: "not a pizza", status: http.StatusBadRequest, code: models.ErrPizzaInvalidData},
		{name: "delete missing", method: http.MethodDelete, path: "/api/pizzas/99", status: http.StatusNotFound, code: models.ErrPizzaNotFound},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[models.APIError](t, w).Code)
		})
	}
}

func TestListToppings(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)

	w := api.do(http.MethodGet, "/api/toppings?sort=usage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []topping.Topping{
		{Name: "Ham", Usage: 2},
		{Name: "Garlic", Usage: 1},
		{Name: "Mozzarella", Usage: 1},
		{Name: "Olives", Usage: 1},
	}, decode[[]topping.Topping](t, w))

	w = api.do(http.MethodGet, "/api/toppings?q=OL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []topping.Topping{{Name: "Olives", Usage: 1}}, decode[[]topping.Topping](t, w))

	w = api.do(http.MethodGet, "/api/toppings?sort=random", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenameTopping(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)

	w := api.do(http.MethodPut, "/api/toppings/Ham", RenameToppingRequest{Name: "Smoked Ham"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[topping.Result](t, w)
	assert.Equal(t, 2, result.Affected)
	assert.Len(t, result.Updated, 2)

	first, err := api.pizzas.GetPizzaByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mozzarella", "Smoked Ham"}, first.Toppings)
	third, err := api.pizzas.GetPizzaByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Garlic"}, third.Toppings)
}

func TestRenameToppingErrors(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)

	w := api.do(http.MethodPut, "/api/toppings/Ham", RenameToppingRequest{Name: "OLIVES"})
	assert.Equal(t, http.StatusConflict, w.Code)
	apiErr := decode[models.APIError](t, w)
	assert.Equal(t, models.ErrToppingDuplicate, apiErr.Code)
	assert.Equal(t, "Olives", apiErr.Details["existing"])

	w = api.do(http.MethodPut, "/api/toppings/Ham", RenameToppingRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrToppingInvalid, decode[models.APIError](t, w).Code)

	w = api.do(http.MethodPut, "/api/toppings/Ham", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/api/toppings/Anchovies", RenameToppingRequest{Name: "Sardines"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	apiErr = decode[models.APIError](t, w)
	assert.Equal(t, models.ErrToppingNotFound, apiErr.Code)
	assert.Equal(t, "Anchovies", apiErr.Details["name"])
}

func TestToppingWritesSurviveCallerCancellation(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)
	gone, cancel := context.WithCancel(context.Background())
	cancel()

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body)).WithContext(gone)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPut, "/api/toppings/Ham", `{"name":"Smoked Ham"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[topping.Result](t, w).Affected)

	w = send(http.MethodDelete, "/api/toppings", `{"names":["Mozzarella","Olives"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[topping.Result](t, w).Affected)

	all, err := api.pizzas.ListPizzas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Smoked Ham"}, all[0].Toppings)
	assert.Equal(t, []string{"Smoked Ham"}, all[1].Toppings)
	assert.Equal(t, []string{"Garlic"}, all[2].Toppings)
}

func TestRenameToppingPartialFailure(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)
	api.store.fail[2] = true

	w := api.do(http.MethodPut, "/api/toppings/Ham", RenameToppingRequest{Name: "Bacon"})
	require.Equal(t, http.StatusBadGateway, w.Code)
	apiErr := decode[models.APIError](t, w)
	assert.Equal(t, models.ErrToppingPartialUpdate, apiErr.Code)
	assert.Equal(t, []interface{}{float64(2)}, apiErr.Details["failed_ids"])
	assert.Equal(t, []interface{}{float64(1)}, apiErr.Details["succeeded_ids"])

	// the successful write is kept
	first, err := api.pizzas.GetPizzaByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mozzarella", "Bacon"}, first.Toppings)
}

func TestDeleteToppings(t *testing.T) {
	api := newTestAPI(t, examplePizzas()...)

	req := httptest.NewRequest(http.MethodDelete, "/api/toppings", bytes.NewBufferString(`{"names":["HAM","olives"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[topping.Result](t, w).Affected)

	all, err := api.pizzas.ListPizzas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Mozzarella"}, all[0].Toppings)
	assert.Equal(t, []string{}, all[1].Toppings)
	assert.Equal(t, []string{"Garlic"}, all[2].Toppings)

	w = api.do(http.MethodDelete, "/api/toppings", DeleteToppingsRequest{Names: []string{" "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrToppingInvalid, decode[models.APIError](t, w).Code)
}

func TestBaseRoutes(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/bases", models.Base{Name: "Sourdough"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/api/bases", models.Base{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/bases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bases := decode[[]models.Base](t, w)
	require.Len(t, bases, 1)
	assert.Equal(t, "Sourdough", bases[0].Name)
}

func TestClientRoutes(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/clients", CreateClientRequest{Name: "toppingctl"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[CreateClientResponse](t, w)
	assert.NotEmpty(t, created.ClientSecret)
	assert.Equal(t, "client_credentials", created.GrantTypes)

	w = api.do(http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), created.ClientSecret)
	clients := decode[[]models.OAuthClient](t, w)
	require.Len(t, clients, 1)
	assert.Equal(t, uint(42), clients[0].UserID)

	w = api.do(http.MethodDelete, "/api/clients/"+created.ClientID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodDelete, "/api/clients/"+created.ClientID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
