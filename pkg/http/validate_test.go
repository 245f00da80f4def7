package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenarioBody struct {
	ScenarioType  string   `json:"scenario_type" validate:"required,max=64"`
	AmountUSD     float64  `json:"amount_usd" validate:"required,gt=0"`
	RiskTolerance string   `json:"risk_tolerance" default:"medium" validate:"oneof=low medium high"`
	InflationRate *float64 `json:"inflation_rate" default:"0.07" validate:"required,gte=-1,lte=1"`
}

func bind(t *testing.T, body string, req interface{}) interface{} {
	t.Helper()
	e := echo.New()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return ReadAndValidateRequest(e.NewContext(r, httptest.NewRecorder()), req)
}

func TestReadAndValidateAppliesDefaults(t *testing.T) {
	req := &scenarioBody{}
	require.Nil(t, bind(t, `{"scenario_type":"health","amount_usd":10}`, req))

	assert.Equal(t, "medium", req.RiskTolerance)
	require.NotNil(t, req.InflationRate)
	assert.Equal(t, 0.07, *req.InflationRate)
}

func TestReadAndValidateKeepsExplicitZero(t *testing.T) {
	req := &scenarioBody{}
	require.Nil(t, bind(t, `{"scenario_type":"health","amount_usd":10,"inflation_rate":0}`, req))

	require.NotNil(t, req.InflationRate)
	assert.Equal(t, 0.0, *req.InflationRate)
}

func TestReadAndValidateReportsJSONFieldNames(t *testing.T) {
	verr := bind(t, `{"amount_usd":-1,"risk_tolerance":"yolo","inflation_rate":3}`, &scenarioBody{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	require.Len(t, byField, 4)
	assert.Equal(t, "ERR_REQUIRED", byField["scenario_type"].Code)
	assert.Equal(t, "ERR_GT", byField["amount_usd"].Code)
	assert.Equal(t, "amount_usd must be a positive USD amount", byField["amount_usd"].Message)
	assert.Equal(t, []string{"low", "medium", "high"}, byField["risk_tolerance"].Params["options"])
	assert.Equal(t, "ERR_LTE", byField["inflation_rate"].Code)
	assert.Contains(t, byField["inflation_rate"].Message, "fraction")
}

func TestReadAndValidateMalformedBody(t *testing.T) {
	verr := bind(t, `{"scenario_type":`, &scenarioBody{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_BODY", errs[0].Code)
}
