package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/engine"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
)

type stubCatalog struct {
	ec2      []pricing.PriceListItem
	rds      *pricing.PriceListItem
	ec2Calls int
}

func (s *stubCatalog) RDSProduct(context.Context, pricing.RDSQuery) (*pricing.PriceListItem, error) {
	if s.rds == nil {
		return nil, models.ErrNoPricingData
	}
	return s.rds, nil
}

func (s *stubCatalog) EC2Products(context.Context, string) ([]pricing.PriceListItem, error) {
	s.ec2Calls++
	return s.ec2, nil
}

func listing(t *testing.T, instanceType string, vcpu int, memory, hourly string) pricing.PriceListItem {
	t.Helper()
	item, err := pricing.ParsePriceListItem(fmt.Sprintf(`{
		"product": {"attributes": {"instanceType": %q, "vcpu": "%d", "memory": %q, "regionCode": "eu-west-3"}},
		"terms": {"OnDemand": {"T": {"priceDimensions": {"D": {"unit": "Hrs", "pricePerUnit": {"USD": %q}}}}}}
	}`, instanceType, vcpu, memory, hourly))
	require.NoError(t, err)
	return item
}

func newTestRouter(t *testing.T, cat *stubCatalog) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return SetupRoutes(engine.NewAdvisor(cat, logger), logger)
}

func parisCatalog(t *testing.T) *stubCatalog {
	return &stubCatalog{ec2: []pricing.PriceListItem{
		listing(t, "m5.large", 2, "8 GiB", "0.0972222222"),
		listing(t, "m6g.large", 2, "8 GiB", "0.07"),
		listing(t, "t4g.large", 2, "8 GiB", "0.0672"),
	}}
}

type resultsBody struct {
	RequestID string                    `json:"request_id"`
	Results   []models.ComparisonResult `json:"results"`
	Message   string                    `json:"message"`
}

func do(r http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t, &stubCatalog{}), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestListRegions(t *testing.T) {
	r := newTestRouter(t, &stubCatalog{})

	w := do(r, http.MethodGet, "/v1/regions", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Regions []regionView `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Regions, 6)
	assert.Equal(t, regionView{Label: "Paris", Code: "eu-west-3"}, body.Regions[0])

	w = do(r, http.MethodGet, "/v1/regions?format=csv", "", "")
	assert.True(t, strings.HasPrefix(w.Body.String(), "label,code\nParis,eu-west-3\n"))
}

func TestCompareEC2_JSON(t *testing.T) {
	cat := parisCatalog(t)
	r := newTestRouter(t, cat)

	w := do(r, http.MethodPost, "/v1/ec2/compare", "application/json",
		`[{"instance_type":"m5.large","vcpus":2,"memory_gb":8,"region":"Paris"},
		  {"instance_type":"m5.large","vcpus":2,"memory_gb":8,"region":"Paris"}]`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body resultsBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Header().Get(RequestIDHeader), body.RequestID)
	require.Len(t, body.Results, 4)
	assert.Equal(t, "t4g.large", body.Results[0].CandidateType)
	assert.Equal(t, 1, cat.ec2Calls, "one session scans the regional catalog once")
}

func TestCompareEC2_SessionsArePerRequest(t *testing.T) {
	cat := parisCatalog(t)
	r := newTestRouter(t, cat)
	payload := `[{"instance_type":"m5.large","vcpus":2,"memory_gb":8,"region":"Paris"}]`

	first := do(r, http.MethodPost, "/v1/ec2/compare", "application/json", payload)
	second := do(r, http.MethodPost, "/v1/ec2/compare", "application/json", payload)

	assert.NotEqual(t, first.Header().Get(RequestIDHeader), second.Header().Get(RequestIDHeader))
	assert.Equal(t, 2, cat.ec2Calls)
}

func TestCompareEC2_CSVBodyFilterAndFormat(t *testing.T) {
	r := newTestRouter(t, parisCatalog(t))

	w := do(r, http.MethodPost, "/v1/ec2/compare?filter=cheapest&format=csv", "text/csv",
		"instance_type,vcpus,memory_gb,region\nm5.large,2,8,Paris\n")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(models.ComparisonColumns, ","), lines[0])
	assert.Contains(t, lines[1], "t4g.large")
}

func TestCompareEC2_NothingToFilter(t *testing.T) {
	r := newTestRouter(t, &stubCatalog{})

	w := do(r, http.MethodPost, "/v1/ec2/compare?filter=cheapest", "application/json",
		`[{"instance_type":"m5.large","vcpus":2,"memory_gb":8,"region":"Paris"}]`)

	require.Equal(t, http.StatusOK, w.Code)
	var body resultsBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Results)
	assert.Equal(t, engine.NothingToFilter, body.Message)
}

func TestCompareEC2_NothingToFilterCSV(t *testing.T) {
	r := newTestRouter(t, &stubCatalog{})

	w := do(r, http.MethodPost, "/v1/ec2/compare?filter=cheapest&format=csv", "application/json",
		`[{"instance_type":"m5.large","vcpus":2,"memory_gb":8,"region":"Paris"}]`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, engine.NothingToFilter, w.Header().Get(MessageHeader))
	assert.Equal(t, strings.Join(models.ComparisonColumns, ","), strings.TrimSpace(w.Body.String()))
}

func TestCompareEC2_BadInput(t *testing.T) {
	r := newTestRouter(t, &stubCatalog{})

	w := do(r, http.MethodPost, "/v1/ec2/compare", "text/csv", "instance_type,region\nm5.large,Paris\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing")

	w = do(r, http.MethodPost, "/v1/ec2/compare", "application/json", `[{"instance_type":"","vcpus":2,"memory_gb":8,"region":"Paris"}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "row 1")
}

func TestPriceRDS(t *testing.T) {
	r := newTestRouter(t, &stubCatalog{})

	w := do(r, http.MethodPost, "/v1/rds/price", "application/json",
		`[{"engine":"PostgreSQL","instance_type":"db.t3.medium","region":"Paris","multi_az":"Oui","start":"","end":""}]`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Results []models.RDSPriceRecord `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "No pricing data found", body.Results[0].Error)
	assert.Equal(t, "Paris", body.Results[0].Region)
}

func TestPriceRDS_CSV(t *testing.T) {
	r := newTestRouter(t, &stubCatalog{})

	w := do(r, http.MethodPost, "/v1/rds/price?format=csv", "application/json",
		`[{"engine":"MariaDB","instance_type":"db.t3.small","region":"London","multi_az":"Non","start":"","end":""}]`)

	require.Equal(t, http.StatusOK, w.Code)
	first, _, _ := bytes.Cut(w.Body.Bytes(), []byte("\n"))
	assert.Equal(t, strings.Join(models.RDSColumns, ","), string(first))
}

func TestPriceRDS_RejectsUnknownField(t *testing.T) {
	r := newTestRouter(t, &stubCatalog{})

	w := do(r, http.MethodPost, "/v1/rds/price", "application/json", `[{"engine":"MariaDB","colour":"red"}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
