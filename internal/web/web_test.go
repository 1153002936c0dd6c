package web

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/cache"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/workflow"
)

const testJWTSecret = "test-secret"

type testSite struct {
	server *httptest.Server
	client *http.Client
	db     *sql.DB
}

func setupTestSite(t *testing.T) *testSite {
	t.Helper()
	database := db.NewTestDB(t)
	svc := workflow.New(database, cache.NewMemory())

	router, err := NewRouter(database, testJWTSecret, svc, photos.NewDBStore(database))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	hash, _ := auth.HashPassword("admin123")
	if _, err := store.CreateUser(context.Background(), database, "admin", hash, model.RoleAdmin); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testSite{server: server, client: client, db: database}
}

func (s *testSite) get(t *testing.T, path string) (int, string, *http.Response) {
	t.Helper()
	resp, err := s.client.Get(s.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}

func (s *testSite) post(t *testing.T, path string, form url.Values) (int, string, *http.Response) {
	t.Helper()
	resp, err := s.client.PostForm(s.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}

func (s *testSite) login(t *testing.T) {
	t.Helper()
	code, _, resp := s.post(t, "/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	if code != http.StatusSeeOther || resp.Header.Get("Location") != "/admin" {
		t.Fatalf("login: expected redirect to /admin, got %d %s", code, resp.Header.Get("Location"))
	}
}

func reportForm(name string) url.Values {
	return url.Values{
		"item_name":      {name},
		"category":       {"Accessories"},
		"location_found": {"Library"},
		"date_found":     {"2024-03-01"},
		"finder_name":    {"A"},
		"finder_email":   {"a@x.com"},
	}
}

func onlyItem(t *testing.T, database *sql.DB) model.FoundItem {
	t.Helper()
	items, err := store.ListFoundItems(context.Background(), database, "")
	if err != nil || len(items) != 1 {
		t.Fatalf("expected exactly one item, got %d (%v)", len(items), err)
	}
	return items[0]
}

func TestPublicPagesRender(t *testing.T) {
	site := setupTestSite(t)

	for _, path := range []string{"/", "/report", "/claim", "/claim?q=phone&category=Keys", "/login", "/static/style.css"} {
		if code, _, _ := site.get(t, path); code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, code)
		}
	}
	if code, _, _ := site.get(t, "/claim/999"); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown item, got %d", code)
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	site := setupTestSite(t)

	for _, path := range []string{"/admin", "/admin/users", "/admin/settings"} {
		code, _, resp := site.get(t, path)
		if code != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
			t.Errorf("GET %s: expected redirect to /login, got %d %s", path, code, resp.Header.Get("Location"))
		}
	}

	code, _, _ := site.post(t, "/admin/items/1/approve", nil)
	if code != http.StatusSeeOther {
		t.Errorf("expected redirect for anonymous moderation, got %d", code)
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	site := setupTestSite(t)

	code, body, _ := site.post(t, "/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
	if !strings.Contains(body, "Invalid username or password.") || !strings.Contains(body, `value="admin"`) {
		t.Error("expected the form re-rendered with an inline error")
	}
}

func TestReportValidation(t *testing.T) {
	site := setupTestSite(t)

	form := reportForm("Phone")
	form.Set("category", "Pets")
	code, body, _ := site.post(t, "/report", form)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
	if !strings.Contains(body, "category") || !strings.Contains(body, `value="Phone"`) {
		t.Error("expected the error and the submitted values on the page")
	}

	items, _ := store.ListFoundItems(context.Background(), site.db, "")
	if len(items) != 0 {
		t.Errorf("invalid report must not be stored, got %d items", len(items))
	}
}

func TestReportModerateClaimFlow(t *testing.T) {
	site := setupTestSite(t)

	code, body, _ := site.post(t, "/report", reportForm("Blue Backpack"))
	if code != http.StatusOK || !strings.Contains(body, "Item Reported Successfully!") {
		t.Fatalf("report: expected confirmation, got %d", code)
	}
	item := onlyItem(t, site.db)
	if item.Status != model.StatusPending {
		t.Fatalf("expected pending item, got %q", item.Status)
	}

	if _, body, _ := site.get(t, "/claim?q=backpack"); strings.Contains(body, "Blue Backpack") {
		t.Error("pending item must not be searchable")
	}

	site.login(t)
	if _, body, _ := site.get(t, "/admin"); !strings.Contains(body, "Blue Backpack") {
		t.Error("dashboard should list the pending item")
	}

	code, _, resp := site.post(t, fmt.Sprintf("/admin/items/%d/approve", item.ID), nil)
	if code != http.StatusSeeOther || !strings.Contains(resp.Header.Get("Location"), "success=") {
		t.Fatalf("approve: expected success redirect, got %d %s", code, resp.Header.Get("Location"))
	}

	if _, body, _ := site.get(t, "/claim?q=BACKPACK"); !strings.Contains(body, "Blue Backpack") {
		t.Error("approved item should be searchable")
	}

	claimForm := url.Values{
		"claimant_name":      {"B"},
		"claimant_email":     {"b@x.com"},
		"proof_of_ownership": {"scratch on back"},
	}
	code, body, _ = site.post(t, fmt.Sprintf("/claim/%d", item.ID), claimForm)
	if code != http.StatusOK || !strings.Contains(body, "Claim Submitted") {
		t.Fatalf("claim: expected confirmation, got %d", code)
	}

	claims, _ := store.ListClaims(context.Background(), site.db, "")
	if len(claims) != 1 {
		t.Fatalf("expected one claim, got %d", len(claims))
	}
	code, _, _ = site.post(t, fmt.Sprintf("/admin/claims/%d/approve", claims[0].ID), nil)
	if code != http.StatusSeeOther {
		t.Fatalf("approve claim: expected redirect, got %d", code)
	}

	if got := onlyItem(t, site.db); got.Status != model.StatusClaimed {
		t.Errorf("expected claimed item, got %q", got.Status)
	}
	if code, _, _ := site.get(t, fmt.Sprintf("/claim/%d", item.ID)); code != http.StatusNotFound {
		t.Errorf("claimed item should no longer be claimable, got %d", code)
	}
}

func TestModerationOutcomes(t *testing.T) {
	site := setupTestSite(t)
	site.post(t, "/report", reportForm("Keys"))
	item := onlyItem(t, site.db)
	site.login(t)

	site.post(t, fmt.Sprintf("/admin/items/%d/reject", item.ID), nil)
	_, _, resp := site.post(t, fmt.Sprintf("/admin/items/%d/approve", item.ID), nil)
	if !strings.Contains(resp.Header.Get("Location"), "error=") {
		t.Errorf("approving a rejected item should report an error, got %s", resp.Header.Get("Location"))
	}

	if code, _, _ := site.post(t, fmt.Sprintf("/admin/items/%d/archive", item.ID), nil); code != http.StatusNotFound {
		t.Errorf("unknown action: expected 404, got %d", code)
	}

	_, _, resp = site.post(t, fmt.Sprintf("/admin/items/%d/delete", item.ID), nil)
	if !strings.Contains(resp.Header.Get("Location"), "success=") {
		t.Errorf("delete should succeed, got %s", resp.Header.Get("Location"))
	}
	items, _ := store.ListFoundItems(context.Background(), site.db, "")
	if len(items) != 0 {
		t.Errorf("expected item deleted, %d left", len(items))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	site := setupTestSite(t)
	site.login(t)

	u, _ := url.Parse(site.server.URL)
	var token string
	for _, c := range site.client.Jar.Cookies(u) {
		if c.Name == tokenCookie {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("no session cookie after login")
	}

	code, _, resp := site.post(t, "/logout", nil)
	if code != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("logout: expected redirect to /login, got %d", code)
	}

	// Replaying the old cookie must not work.
	req, _ := http.NewRequest("GET", site.server.URL+"/admin", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	replay, err := (&http.Client{CheckRedirect: site.client.CheckRedirect}).Do(req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	replay.Body.Close()
	if replay.StatusCode != http.StatusSeeOther || replay.Header.Get("Location") != "/login" {
		t.Errorf("revoked cookie should redirect to login, got %d", replay.StatusCode)
	}
}

func TestReportWithPhoto(t *testing.T) {
	site := setupTestSite(t)

	var pngData bytes.Buffer
	png.Encode(&pngData, image.NewRGBA(image.Rect(0, 0, 8, 8)))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range reportForm("Water Bottle") {
		mw.WriteField(k, v[0])
	}
	part, _ := mw.CreateFormFile("photo", "bottle.png")
	part.Write(pngData.Bytes())
	mw.Close()

	resp, err := site.client.Post(site.server.URL+"/report", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", resp.StatusCode)
	}

	item := onlyItem(t, site.db)
	if !strings.HasPrefix(item.PhotoURL, photos.URLPrefix) {
		t.Fatalf("expected stored photo url, got %q", item.PhotoURL)
	}
	data, mime, err := store.GetPhoto(context.Background(), site.db, strings.TrimPrefix(item.PhotoURL, photos.URLPrefix))
	if err != nil || data == nil || mime != "image/jpeg" {
		t.Errorf("photo not stored as jpeg: %v %s", err, mime)
	}
}

func TestRejectedReportStoresNoPhoto(t *testing.T) {
	site := setupTestSite(t)

	var pngData bytes.Buffer
	png.Encode(&pngData, image.NewRGBA(image.Rect(0, 0, 8, 8)))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range reportForm("") {
		mw.WriteField(k, v[0])
	}
	part, _ := mw.CreateFormFile("photo", "bottle.png")
	part.Write(pngData.Bytes())
	mw.Close()

	resp, err := site.client.Post(site.server.URL+"/report", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("report without a name: expected 400, got %d", resp.StatusCode)
	}

	n, err := store.CountPhotos(context.Background(), site.db)
	if err != nil {
		t.Fatalf("CountPhotos: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no stored photos after a rejected report, got %d", n)
	}
}

func TestUsersPage(t *testing.T) {
	site := setupTestSite(t)
	site.login(t)

	form := url.Values{"username": {"mod"}, "password": {"modpassword"}, "role": {model.RoleModerator}}
	_, _, resp := site.post(t, "/admin/users", form)
	if !strings.Contains(resp.Header.Get("Location"), "success=") {
		t.Fatalf("create user: expected success, got %s", resp.Header.Get("Location"))
	}
	_, _, resp = site.post(t, "/admin/users", form)
	if !strings.Contains(resp.Header.Get("Location"), "error=") {
		t.Errorf("duplicate user should fail, got %s", resp.Header.Get("Location"))
	}

	if _, body, _ := site.get(t, "/admin/users"); !strings.Contains(body, "mod") || !strings.Contains(body, "Moderator") {
		t.Error("users page should list the new moderator")
	}

	mod, _ := store.GetActiveUserByUsername(context.Background(), site.db, "mod")
	_, _, resp = site.post(t, fmt.Sprintf("/admin/users/%d/delete", mod.ID), nil)
	if !strings.Contains(resp.Header.Get("Location"), "success=") {
		t.Errorf("delete user: expected success, got %s", resp.Header.Get("Location"))
	}
}

func TestModeratorCannotManageUsers(t *testing.T) {
	site := setupTestSite(t)

	hash, _ := auth.HashPassword("modpassword")
	store.CreateUser(context.Background(), site.db, "mod", hash, model.RoleModerator)
	code, _, _ := site.post(t, "/login", url.Values{"username": {"mod"}, "password": {"modpassword"}})
	if code != http.StatusSeeOther {
		t.Fatalf("moderator login: expected 303, got %d", code)
	}

	if code, _, _ := site.get(t, "/admin"); code != http.StatusOK {
		t.Errorf("moderator should see the dashboard, got %d", code)
	}
	if code, _, _ := site.get(t, "/admin/users"); code != http.StatusForbidden {
		t.Errorf("moderator should not see users, got %d", code)
	}
}

func TestSettingsChangePassword(t *testing.T) {
	site := setupTestSite(t)
	site.login(t)

	code, body, _ := site.post(t, "/admin/settings", url.Values{"current_password": {"nope"}, "new_password": {"newpassword"}})
	if code != http.StatusUnauthorized || !strings.Contains(body, "Current password is incorrect.") {
		t.Errorf("expected inline error, got %d", code)
	}

	code, body, _ = site.post(t, "/admin/settings", url.Values{"current_password": {"admin123"}, "new_password": {"newpassword"}})
	if code != http.StatusOK || !strings.Contains(body, "Password changed.") {
		t.Errorf("expected success, got %d", code)
	}

	_, _, err := auth.Login(context.Background(), site.db, testJWTSecret, "admin", "newpassword")
	if err != nil {
		t.Errorf("login with new password: %v", err)
	}
}
