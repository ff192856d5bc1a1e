package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kantorid/persediaan/internal/auth"
	"github.com/kantorid/persediaan/internal/db"
	"github.com/kantorid/persediaan/internal/model"
	"github.com/kantorid/persediaan/internal/store"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server   *httptest.Server
	database *sql.DB
	admin    *model.User
}

func setupTestServer(t *testing.T) (*testEnv, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret, time.UTC)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	admin, err := store.CreateUser(ctx, database, "Admin", "admin@example.com", string(hash), model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	// Get token.
	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return &testEnv{server: server, database: database, admin: admin}, token
}

// employeeToken creates an employee account and returns a token for it.
func (env *testEnv) employeeToken(t *testing.T, email string) (*model.User, string) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.DefaultCost)
	user, err := store.CreateUser(context.Background(), env.database, "Employee", email, string(hash), model.RoleEmployee, nil)
	if err != nil {
		t.Fatalf("creating employee: %v", err)
	}
	token, err := auth.GenerateToken(testJWTSecret, user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return user, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, out any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
}

// createTypeAndItem provisions a type and an item with initial stock through
// the API and returns the item's ID.
func createTypeAndItem(t *testing.T, env *testEnv, token, name string, limit int, period string, stock int) int64 {
	t.Helper()

	var ct model.ConsumptionType
	req, _ := authRequest("POST", env.server.URL+"/api/types", token, map[string]any{
		"name": name, "limit": limit, "period": period,
	})
	doJSON(t, req, http.StatusCreated, &ct)

	var item model.Item
	req, _ = authRequest("POST", env.server.URL+"/api/items", token, map[string]any{
		"name": name + " item", "type_id": ct.ID, "stock": stock,
	})
	doJSON(t, req, http.StatusCreated, &item)
	if item.Stock != stock {
		t.Fatalf("expected initial stock %d, got %d", stock, item.Stock)
	}
	return item.ID
}

func testPhotoJPEG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{200, 100, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}

// takeRequest builds the multipart POST /api/records request.
func takeRequest(t *testing.T, url, token string, itemID int64, quantity int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("item_id", strconv.FormatInt(itemID, 10))
	mw.WriteField("quantity", strconv.Itoa(quantity))
	fw, err := mw.CreateFormFile("photo", "proof.jpg")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	fw.Write(testPhotoJPEG())
	mw.Close()

	req, err := http.NewRequest("POST", url+"/api/records", &body)
	if err != nil {
		t.Fatalf("building take request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestLoginEndpoint(t *testing.T) {
	env, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "wrong"})
	resp, _ := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	body, _ = json.Marshal(map[string]string{"email": "nobody@example.com", "password": "password"})
	resp, _ = http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown email, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	env, _ := setupTestServer(t)

	resp, _ := http.Get(env.server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	env, token := setupTestServer(t)

	req, _ := authRequest("POST", env.server.URL+"/api/auth/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	// The revoked token no longer works.
	req, _ = authRequest("GET", env.server.URL+"/api/items", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	env, adminToken := setupTestServer(t)
	_, empToken := env.employeeToken(t, "emp@example.com")

	// Employees cannot create types.
	req, _ := authRequest("POST", env.server.URL+"/api/types", empToken, map[string]any{
		"name": "Snacks", "limit": 5, "period": model.PeriodWeekly,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for employee creating type, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Employees cannot access /api/users.
	req, _ = authRequest("GET", env.server.URL+"/api/users", empToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for employee accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// But they can read types.
	req, _ = authRequest("GET", env.server.URL+"/api/types", empToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	// And admins can list users.
	req, _ = authRequest("GET", env.server.URL+"/api/users", adminToken, nil)
	doJSON(t, req, http.StatusOK, nil)
}

func TestTypesAPIFlow(t *testing.T) {
	env, token := setupTestServer(t)

	var ct model.ConsumptionType
	req, _ := authRequest("POST", env.server.URL+"/api/types", token, map[string]any{
		"name": "Beverages", "limit": 5, "period": model.PeriodWeekly,
	})
	doJSON(t, req, http.StatusCreated, &ct)
	if ct.Limit != 5 || ct.Period != model.PeriodWeekly {
		t.Errorf("unexpected type: %+v", ct)
	}

	// Invalid period rejected.
	req, _ = authRequest("POST", env.server.URL+"/api/types", token, map[string]any{
		"name": "Bad", "limit": 5, "period": "daily",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid period, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// List comes back paginated.
	var list pagedResponse
	req, _ = authRequest("GET", env.server.URL+"/api/types", token, nil)
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.TotalCount != 1 {
		t.Errorf("expected 1 type, got %d", list.Pagination.TotalCount)
	}

	// A type with an active item cannot be deleted.
	var item model.Item
	req, _ = authRequest("POST", env.server.URL+"/api/items", token, map[string]any{
		"name": "Coffee", "type_id": ct.ID,
	})
	doJSON(t, req, http.StatusCreated, &item)

	req, _ = authRequest("DELETE", env.server.URL+"/api/types/"+strconv.FormatInt(ct.ID, 10), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 deleting type with items, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// After the item goes away the type can be deleted.
	req, _ = authRequest("DELETE", env.server.URL+"/api/items/"+strconv.FormatInt(item.ID, 10), token, nil)
	doJSON(t, req, http.StatusOK, nil)
	req, _ = authRequest("DELETE", env.server.URL+"/api/types/"+strconv.FormatInt(ct.ID, 10), token, nil)
	doJSON(t, req, http.StatusOK, nil)
}

func TestItemInitialStockAudited(t *testing.T) {
	env, token := setupTestServer(t)

	itemID := createTypeAndItem(t, env, token, "Snacks", 5, model.PeriodWeekly, 20)

	var list pagedResponse
	req, _ := authRequest("GET", env.server.URL+"/api/items/"+strconv.FormatInt(itemID, 10)+"/adjustments", token, nil)
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.TotalCount != 1 {
		t.Fatalf("expected 1 adjustment, got %d", list.Pagination.TotalCount)
	}

	data, _ := json.Marshal(list.Data)
	var adjustments []model.Adjustment
	json.Unmarshal(data, &adjustments)
	if adjustments[0].Change != 20 || adjustments[0].Reason != "Initial stock" {
		t.Errorf("unexpected adjustment: %+v", adjustments[0])
	}
}

func TestItemStockEditGoesThroughLedger(t *testing.T) {
	env, token := setupTestServer(t)

	itemID := createTypeAndItem(t, env, token, "Paper", 5, model.PeriodWeekly, 10)

	req, _ := authRequest("GET", env.server.URL+"/api/items/"+strconv.FormatInt(itemID, 10), token, nil)
	var item model.Item
	doJSON(t, req, http.StatusOK, &item)

	// Edit the item with a new stock value.
	req, _ = authRequest("PUT", env.server.URL+"/api/items/"+strconv.FormatInt(itemID, 10), token, map[string]any{
		"name": item.Name, "type_id": item.TypeID, "stock": 4,
	})
	doJSON(t, req, http.StatusOK, &item)
	if item.Stock != 4 {
		t.Errorf("expected stock 4, got %d", item.Stock)
	}

	// The delta shows up as an adjustment.
	var list pagedResponse
	req, _ = authRequest("GET", env.server.URL+"/api/items/"+strconv.FormatInt(itemID, 10)+"/adjustments", token, nil)
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.TotalCount != 2 {
		t.Fatalf("expected 2 adjustments, got %d", list.Pagination.TotalCount)
	}

	data, _ := json.Marshal(list.Data)
	var adjustments []model.Adjustment
	json.Unmarshal(data, &adjustments)
	// Newest first.
	if adjustments[0].Change != -6 || adjustments[0].Reason != "Manual adjustment by admin" {
		t.Errorf("unexpected adjustment: %+v", adjustments[0])
	}
}

func TestTakeFlow(t *testing.T) {
	env, adminToken := setupTestServer(t)
	_, empToken := env.employeeToken(t, "emp@example.com")

	itemID := createTypeAndItem(t, env, adminToken, "Coffee", 5, model.PeriodWeekly, 10)

	// First take succeeds.
	var record model.Record
	resp, err := http.DefaultClient.Do(takeRequest(t, env.server.URL, empToken, itemID, 3))
	if err != nil {
		t.Fatalf("take request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&record)
	resp.Body.Close()
	if record.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", record.Quantity)
	}

	// Second take of 3 breaches the weekly limit of 5.
	resp, err = http.DefaultClient.Do(takeRequest(t, env.server.URL, empToken, itemID, 3))
	if err != nil {
		t.Fatalf("take request: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for quota breach, got %d", resp.StatusCode)
	}
	var quotaResp struct {
		Limit  int    `json:"limit"`
		Period string `json:"period"`
		Taken  int    `json:"taken"`
	}
	json.NewDecoder(resp.Body).Decode(&quotaResp)
	resp.Body.Close()
	if quotaResp.Limit != 5 || quotaResp.Taken != 3 || quotaResp.Period != model.PeriodWeekly {
		t.Errorf("unexpected quota detail: %+v", quotaResp)
	}

	// Stock was only decremented by the successful take.
	var item model.Item
	req, _ := authRequest("GET", env.server.URL+"/api/items/"+strconv.FormatInt(itemID, 10), adminToken, nil)
	doJSON(t, req, http.StatusOK, &item)
	if item.Stock != 7 {
		t.Errorf("expected stock 7, got %d", item.Stock)
	}
}

func TestTakeWithoutPhotoRejected(t *testing.T) {
	env, adminToken := setupTestServer(t)
	_, empToken := env.employeeToken(t, "emp@example.com")

	itemID := createTypeAndItem(t, env, adminToken, "Tea", 5, model.PeriodWeekly, 10)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("item_id", strconv.FormatInt(itemID, 10))
	mw.WriteField("quantity", "1")
	mw.Close()

	req, _ := http.NewRequest("POST", env.server.URL+"/api/records", &body)
	req.Header.Set("Authorization", "Bearer "+empToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without proof photo, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRecordListScoping(t *testing.T) {
	env, adminToken := setupTestServer(t)
	empA, tokenA := env.employeeToken(t, "a@example.com")
	empB, tokenB := env.employeeToken(t, "b@example.com")

	itemID := createTypeAndItem(t, env, adminToken, "Snacks", 10, model.PeriodWeekly, 50)

	for _, token := range []string{tokenA, tokenB} {
		resp, err := http.DefaultClient.Do(takeRequest(t, env.server.URL, token, itemID, 1))
		if err != nil || resp.StatusCode != http.StatusCreated {
			t.Fatalf("take failed: %v (%d)", err, resp.StatusCode)
		}
		resp.Body.Close()
	}

	// Employee A only sees their own record.
	var list pagedResponse
	req, _ := authRequest("GET", env.server.URL+"/api/records", tokenA, nil)
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.TotalCount != 1 {
		t.Errorf("expected 1 record for employee, got %d", list.Pagination.TotalCount)
	}

	// Employee A cannot request employee B's records.
	req, _ = authRequest("GET", env.server.URL+"/api/records?user_id="+strconv.FormatInt(empB.ID, 10), tokenA, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for cross-user listing, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin sees everything and can filter by user.
	req, _ = authRequest("GET", env.server.URL+"/api/records", adminToken, nil)
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.TotalCount != 2 {
		t.Errorf("expected 2 records for admin, got %d", list.Pagination.TotalCount)
	}
	req, _ = authRequest("GET", env.server.URL+"/api/records?user_id="+strconv.FormatInt(empA.ID, 10), adminToken, nil)
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.TotalCount != 1 {
		t.Errorf("expected 1 record with user filter, got %d", list.Pagination.TotalCount)
	}
}

func TestAdjustmentsEndpoint(t *testing.T) {
	env, token := setupTestServer(t)

	itemID := createTypeAndItem(t, env, token, "Glue", 5, model.PeriodWeekly, 10)

	// Shrink by 5.
	var adj model.Adjustment
	req, _ := authRequest("POST", env.server.URL+"/api/adjustments", token, map[string]any{
		"item_id": itemID, "change": -5, "reason": "Damaged batch",
	})
	doJSON(t, req, http.StatusCreated, &adj)
	if adj.Change != -5 || adj.Reason != "Damaged batch" {
		t.Errorf("unexpected adjustment: %+v", adj)
	}

	// Another -10 would push stock below zero.
	req, _ = authRequest("POST", env.server.URL+"/api/adjustments", token, map[string]any{
		"item_id": itemID, "change": -10,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for negative stock, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	var item model.Item
	req, _ = authRequest("GET", env.server.URL+"/api/items/"+strconv.FormatInt(itemID, 10), token, nil)
	doJSON(t, req, http.StatusOK, &item)
	if item.Stock != 5 {
		t.Errorf("expected stock 5, got %d", item.Stock)
	}
}

func TestScanEndpoint(t *testing.T) {
	env, adminToken := setupTestServer(t)
	_, empToken := env.employeeToken(t, "emp@example.com")

	itemID := createTypeAndItem(t, env, adminToken, "Coffee", 5, model.PeriodWeekly, 10)

	resp, err := http.DefaultClient.Do(takeRequest(t, env.server.URL, empToken, itemID, 2))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("take failed: %v (%d)", err, resp.StatusCode)
	}
	resp.Body.Close()

	var scan scanResponse
	req, _ := authRequest("POST", env.server.URL+"/api/scan", empToken, map[string]any{"item_id": itemID})
	doJSON(t, req, http.StatusOK, &scan)
	if scan.Item == nil || scan.Item.ID != itemID {
		t.Fatalf("unexpected scan item: %+v", scan.Item)
	}
	if scan.Taken != 2 || scan.Remaining != 3 {
		t.Errorf("expected taken 2 / remaining 3, got %d / %d", scan.Taken, scan.Remaining)
	}

	// Unknown item.
	req, _ = authRequest("POST", env.server.URL+"/api/scan", empToken, map[string]any{"item_id": 9999})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUserDeleteBlockedByRecords(t *testing.T) {
	env, adminToken := setupTestServer(t)
	emp, empToken := env.employeeToken(t, "emp@example.com")

	itemID := createTypeAndItem(t, env, adminToken, "Tea", 5, model.PeriodWeekly, 10)
	resp, err := http.DefaultClient.Do(takeRequest(t, env.server.URL, empToken, itemID, 1))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("take failed: %v (%d)", err, resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := authRequest("DELETE", env.server.URL+"/api/users/"+strconv.FormatInt(emp.ID, 10), adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 deleting user with records, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// A user without records can be deleted.
	other, _ := env.employeeToken(t, "other@example.com")
	req, _ = authRequest("DELETE", env.server.URL+"/api/users/"+strconv.FormatInt(other.ID, 10), adminToken, nil)
	doJSON(t, req, http.StatusOK, nil)
}

func TestRecordPhotoAccess(t *testing.T) {
	env, adminToken := setupTestServer(t)
	_, tokenA := env.employeeToken(t, "a@example.com")
	_, tokenB := env.employeeToken(t, "b@example.com")

	itemID := createTypeAndItem(t, env, adminToken, "Snacks", 5, model.PeriodWeekly, 10)

	var record model.Record
	resp, err := http.DefaultClient.Do(takeRequest(t, env.server.URL, tokenA, itemID, 1))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("take failed: %v (%d)", err, resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&record)
	resp.Body.Close()

	photoURL := env.server.URL + "/api/records/" + strconv.FormatInt(record.ID, 10) + "/photo"

	// Owner can fetch the proof photo.
	req, _ := authRequest("GET", photoURL, tokenA, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for owner, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", ct)
	}
	resp.Body.Close()

	// Another employee cannot.
	req, _ = authRequest("GET", photoURL, tokenB, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for other employee, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin can.
	req, _ = authRequest("GET", photoURL, adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
