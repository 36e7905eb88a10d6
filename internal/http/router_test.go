package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/address"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/auth"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/hostresolver"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/store"
)

const base = "maitr.de"

type apiFixture struct {
	handler http.Handler
	repo    *repository.MemoryConfigurationsRepo
	tokens  map[string]string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := zap.NewNop()
	repo := repository.NewMemoryConfigurationsRepo()
	kv := store.NewMemoryKV()
	claims := store.NewClaims(kv)
	routes := store.NewRouteTable(kv, nil, logger)
	validator := address.NewValidator(base, address.DefaultReserved, repo, claims, logger)
	orch := deploy.New(deploy.Deps{
		Configurations: repo,
		Publisher:      repo,
		Validator:      validator,
		Claims:         claims,
		Router:         routes,
		Locker:         store.NewLocker(kv),
	}, deploy.Options{}, logger)

	tokens := auth.NewTokens(repository.NewMemoryOwnersRepo(), bcrypt.MinCost, logger)
	issued := map[string]string{}
	for _, owner := range []string{"o1", "o2"} {
		tok, err := tokens.Issue(context.Background(), owner, "")
		require.NoError(t, err)
		issued[owner] = tok
	}

	sites := service.NewSiteService(repo, routes, nil, nil, logger)
	publish := service.NewPublishService(orch, tokens, time.Minute, logger)
	h := NewHandlers(sites, publish, validator, tokens, logger)
	resolver := hostresolver.New(hostresolver.Options{BaseDomain: base, Reserved: address.DefaultReserved})
	return &apiFixture{handler: NewRouter(h, resolver, logger), repo: repo, tokens: issued}
}

func (f *apiFixture) do(t *testing.T, method, url, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, rd)
	if owner != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[owner])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *apiFixture) createDraft(t *testing.T, owner string, cfg map[string]any) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "http://"+base+"/api/v1/configurations", owner, cfg)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[Result[domain.Configuration]](t, rec)
	return res.Result.ID
}

func bellaVista() map[string]any {
	return map[string]any{
		"businessName":  "Bella Vista",
		"businessType":  "Restaurant",
		"template":      "cozy",
		"primaryColor":  "#aa3300",
		"selectedPages": []string{"menu", "contact"},
		"categories":    []string{"Pizza"},
		"menuItems":     []map[string]any{{"name": "Margherita", "price": "9.00", "category": "Pizza"}},
		"unknownField":  "ignored",
	}
}

func TestHealthzAndLanding(t *testing.T) {
	f := newAPIFixture(t)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "http://"+base+"/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "http://localhost:8080/", "", nil).Code)
}

func TestValidateAddress(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "http://"+base+"/api/v1/addresses/validate?candidateName=admin", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[validateAddressResponse](t, rec)
	assert.False(t, res.Available)
	assert.Equal(t, "reserved", res.Reason)
	assert.Equal(t, []string{"admin-2", "admin-3", "admin-4"}, res.Suggestions)

	rec = f.do(t, http.MethodPost, "http://"+base+"/api/v1/addresses/validate", "", map[string]string{"candidateName": "Bella Vista"})
	res = decode[validateAddressResponse](t, rec)
	assert.True(t, res.Available)
	assert.Equal(t, "bella-vista.maitr.de", res.FullAddress)
}

func TestValidateAddress_OwnerComesFromToken(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createDraft(t, "o1", bellaVista())
	rec := f.do(t, http.MethodPost, "http://"+base+"/api/v1/publish?wait=true", "o1", map[string]string{
		"candidateAddress": "bella-vista", "configurationId": id,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// a bare ownerId in the query is not enough to learn who holds the name
	rec = f.do(t, http.MethodGet, "http://"+base+"/api/v1/addresses/validate?candidateName=bella-vista&ownerId=o1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[validateAddressResponse](t, rec)
	assert.False(t, res.Available)
	assert.Equal(t, "taken", res.Reason)

	rec = f.do(t, http.MethodPost, "http://"+base+"/api/v1/addresses/validate", "o2", map[string]string{
		"candidateName": "bella-vista", "ownerId": "o1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "taken", decode[validateAddressResponse](t, rec).Reason)

	rec = f.do(t, http.MethodGet, "http://"+base+"/api/v1/addresses/validate?candidateName=bella-vista", "o1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[validateAddressResponse](t, rec)
	assert.True(t, res.Available)
	assert.Equal(t, "owned", res.Reason)

	req := httptest.NewRequest(http.MethodGet, "http://"+base+"/api/v1/addresses/validate?candidateName=bella-vista", nil)
	req.Header.Set("Authorization", "Bearer o1.forged")
	bad := httptest.NewRecorder()
	f.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestPublishEndToEnd(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createDraft(t, "o1", bellaVista())

	// not published yet
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "http://bella-vista."+base+"/", "", nil).Code)

	rec := f.do(t, http.MethodPost, "http://"+base+"/api/v1/publish?wait=true", "", map[string]string{
		"candidateAddress": "Bella Vista", "configurationId": id, "ownerToken": f.tokens["o1"],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[publishTerminal](t, rec)
	assert.True(t, done.Success)
	assert.Equal(t, "https://bella-vista.maitr.de", done.PublishedURL)
	assert.Equal(t, "https://maitr.de/s/bella-vista/", done.PreviewURL)
	assert.NotNil(t, done.PublishedAt)

	page := f.do(t, http.MethodGet, "http://Bella-Vista."+base+":443/", "", nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, page.Body.String(), "Bella Vista")
	assert.Contains(t, page.Body.String(), "--color-primary: #aa3300;")

	menu := f.do(t, http.MethodGet, "http://bella-vista."+base+"/menu?format=json", "", nil)
	require.Equal(t, http.StatusOK, menu.Code)
	assert.Contains(t, menu.Body.String(), `"Margherita"`)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "http://bella-vista."+base+"/gallery", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "http://"+base+"/s/bella-vista/", "", nil).Code)
	assert.Equal(t, http.StatusMovedPermanently, f.do(t, http.MethodGet, "http://"+base+"/s/bella-vista", "", nil).Code)

	tenant := f.do(t, http.MethodGet, "http://"+base+"/api/v1/tenants/bella-vista", "", nil)
	require.Equal(t, http.StatusOK, tenant.Code)
	tr := decode[tenantResponse](t, tenant)
	assert.True(t, tr.Success)
	assert.Equal(t, id, tr.Data.ID)
	assert.Equal(t, domain.StatusPublished, tr.Data.Status)

	missing := f.do(t, http.MethodGet, "http://"+base+"/api/v1/tenants/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.False(t, decode[tenantResponse](t, missing).Success)
}

func TestPublishConflictsAndAuth(t *testing.T) {
	f := newAPIFixture(t)
	first := f.createDraft(t, "o1", bellaVista())
	second := f.createDraft(t, "o2", bellaVista())

	rec := f.do(t, http.MethodPost, "http://"+base+"/api/v1/publish?wait=true", "o1", map[string]string{
		"candidateAddress": "bella-vista", "configurationId": first,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "http://"+base+"/api/v1/publish?wait=true", "o2", map[string]string{
		"candidateAddress": "bella-vista", "configurationId": second,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	res := decode[publishTerminal](t, rec)
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, deploy.ReasonTaken, res.Error.Reason)
	assert.NotEmpty(t, res.Error.Suggestions)

	rec = f.do(t, http.MethodPost, "http://"+base+"/api/v1/publish?wait=true", "o2", map[string]string{
		"candidateAddress": "x", "configurationId": second,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "http://"+base+"/api/v1/publish", "", map[string]string{
		"candidateAddress": "anything", "configurationId": second, "ownerToken": "o2.forged",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "http://"+base+"/api/v1/publish/unknown", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "http://"+base+"/api/v1/publish/unknown", "", nil).Code)
}

func TestPublishPollAndStream(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createDraft(t, "o1", bellaVista())
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	rec := f.do(t, http.MethodPost, "http://"+base+"/api/v1/publish", "o1", map[string]string{
		"candidateAddress": "bella", "configurationId": id,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	accepted := decode[publishAccepted](t, rec)
	require.NotEmpty(t, accepted.AttemptID)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/publish/" + accepted.AttemptID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var stages []string
	var last map[string]any
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if s, ok := msg["stage"].(string); ok {
			stages = append(stages, s)
		}
		last = msg
	}
	assert.Equal(t, []string{"validating", "checking_subdomain", "persisting", "routing"}, stages)
	require.NotNil(t, last)
	assert.Equal(t, true, last["success"])
	assert.Equal(t, "https://bella.maitr.de", last["publishedUrl"])

	poll := f.do(t, http.MethodGet, "http://"+base+"/api/v1/publish/"+accepted.AttemptID, "", nil)
	require.Equal(t, http.StatusOK, poll.Code)
	st := decode[service.PublishStatus](t, poll)
	assert.True(t, st.Done)
	assert.Equal(t, deploy.StageComplete, st.Stage)

	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodDelete, "http://"+base+"/api/v1/publish/"+accepted.AttemptID, "", nil).Code)
}

func TestConfigurationsAPI(t *testing.T) {
	f := newAPIFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "http://"+base+"/api/v1/configurations", "", nil).Code)

	id := f.createDraft(t, "o1", bellaVista())
	url := "http://" + base + "/api/v1/configurations/" + id

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, url, "o2", nil).Code)

	upd := bellaVista()
	upd["businessName"] = "Bella Vista Berlin"
	rec := f.do(t, http.MethodPut, url, "o1", upd)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Bella Vista Berlin", decode[Result[domain.Configuration]](t, rec).Result.BusinessName)

	bad := bellaVista()
	bad["template"] = "nope"
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodPut, url, "o1", bad).Code)

	list := f.do(t, http.MethodGet, "http://"+base+"/api/v1/configurations", "o1", nil)
	assert.Len(t, decode[Result[[]domain.Configuration]](t, list).Result, 1)

	render := f.do(t, http.MethodGet, url+"/render?page=menu", "o1", nil)
	require.Equal(t, http.StatusOK, render.Code)
	assert.Contains(t, render.Body.String(), "Margherita")

	templates := f.do(t, http.MethodGet, "http://"+base+"/api/v1/templates", "", nil)
	assert.Len(t, decode[Result[[]map[string]any]](t, templates).Result, 4)
}

func TestMenuSpreadsheetRoundTrip(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createDraft(t, "o1", bellaVista())
	url := "http://" + base + "/api/v1/configurations/" + id + "/menu.xlsx"

	export := f.do(t, http.MethodGet, url, "o1", nil)
	require.Equal(t, http.StatusOK, export.Code)
	assert.Equal(t, xlsxContentType, export.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(export.Body.Bytes()))
	req.Header.Set("Authorization", "Bearer "+f.tokens["o1"])
	req.Header.Set("Content-Type", xlsxContentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[Result[importMenuResponse]](t, rec).Result.Imported)
}

func TestUnknownHosts(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "http://ghost."+base+"/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Site not found")

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "http://www.unknown-shop.example/", "", nil).Code)
	// reserved subdomains serve the primary experience
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "http://api."+base+"/healthz", "", nil).Code)
}
