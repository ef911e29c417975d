package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// setupSuggestTest creates a Gin engine with a mock OpenAI server and returns
// the router and a function to set the mock response. The dashboard runs on
// in-memory repositories: user 1 is on cycle day 1 and ate 600 kcal today.
func setupSuggestTest(t *testing.T) (*gin.Engine, *Handler, func(int, interface{})) {
	var mockStatus int
	var mockBody interface{}

	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Model != "gpt-4o-mini" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))
	t.Cleanup(mockOpenAI.Close)

	gin.SetMode(gin.TestMode)
	h := newTestHandler(
		memProfiles{1: testProfile(daysAgo(0))},
		nil,
		memMeals{1: {{CaloriesKcal: 600, ProteinG: 50, CarbsG: 40, FatG: 20, LoggedAt: testNow.Add(-5 * time.Hour)}}},
	)
	h.openAI = OpenAIConfig{BaseURL: mockOpenAI.URL + "/", APIKey: "test-key", Model: "gpt-4o-mini"}

	router := gin.New()
	router.POST("/api/meal-log/suggest", asUser(1, time.UTC), h.suggestMealLogItem)

	setMock := func(status int, body interface{}) {
		mockStatus = status
		mockBody = body
	}
	return router, h, setMock
}

// doSuggestRequest sends a POST to the suggest endpoint with the given body.
func doSuggestRequest(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/meal-log/suggest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// openAIChatResponse wraps a content string in the OpenAI chat completions
// response shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
}

func TestSuggest_FoodSuccess(t *testing.T) {
	router, _, setMock := setupSuggestTest(t)

	suggestion := `{"item_name":"Scrambled Eggs","qty":2,"uom":"each","calories":180,"protein_g":14,"carbs_g":2,"fat_g":12,"confidence":4}`
	setMock(http.StatusOK, openAIChatResponse(suggestion))

	w := doSuggestRequest(router, `{"description":"2 eggs scrambled","type":"breakfast"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp suggestResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ItemName != "Scrambled Eggs" || resp.Calories != 180 {
		t.Errorf("suggestion = %+v, want Scrambled Eggs at 180 kcal", resp.suggestionResponse)
	}
	if resp.Remaining == nil {
		t.Fatal("expected remaining budget in response")
	}
	// Day 1 diet target 1848, 600 already eaten.
	if resp.Remaining.CalorieTarget != 1848 || resp.Remaining.CaloriesLeft != 1248 || resp.Remaining.CaloriesLeftAfter != 1068 {
		t.Errorf("remaining = %+v, want 1848/1248/1068", *resp.Remaining)
	}
	if resp.Remaining.ProteinLeftAfter != 160-50-14 {
		t.Errorf("protein left after = %v, want 96", resp.Remaining.ProteinLeftAfter)
	}
}

func TestSuggest_NoDashboardOmitsRemaining(t *testing.T) {
	router, h, setMock := setupSuggestTest(t)
	h.dashboard = nil
	setMock(http.StatusOK, openAIChatResponse(`{"item_name":"Banana","qty":1,"uom":"each","calories":105,"confidence":5}`))

	w := doSuggestRequest(router, `{"description":"banana","type":"snack"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "remaining") {
		t.Errorf("expected no remaining field, got %s", w.Body.String())
	}
}

func TestSuggest_Unrecognized(t *testing.T) {
	router, _, setMock := setupSuggestTest(t)
	setMock(http.StatusOK, openAIChatResponse(`{"error":"unrecognized"}`))

	w := doSuggestRequest(router, `{"description":"asdfghjkl","type":"snack"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "unrecognized" {
		t.Errorf("expected error 'unrecognized', got '%s'", resp["error"])
	}
}

func TestSuggest_OpenAIError500(t *testing.T) {
	router, _, setMock := setupSuggestTest(t)
	setMock(http.StatusInternalServerError, map[string]string{"error": "server error"})

	w := doSuggestRequest(router, `{"description":"banana","type":"snack"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "openai request failed" {
		t.Errorf("expected error 'openai request failed', got '%s'", resp["error"])
	}
}

func TestSuggest_NotConfigured(t *testing.T) {
	router, h, _ := setupSuggestTest(t)
	h.openAI.APIKey = ""

	w := doSuggestRequest(router, `{"description":"banana"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSuggest_BadInput(t *testing.T) {
	router, _, _ := setupSuggestTest(t)
	cases := []struct {
		name string
		body string
	}{
		{"empty description", `{"description":"  ","type":"snack"}`},
		{"exercise is not a meal type", `{"description":"30 minute jog","type":"exercise"}`},
		{"not json", `banana`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doSuggestRequest(router, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestSuggest_MalformedJSON(t *testing.T) {
	router, _, setMock := setupSuggestTest(t)
	setMock(http.StatusOK, openAIChatResponse(`not valid json at all`))

	w := doSuggestRequest(router, `{"description":"banana","type":"snack"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

// TestSuggest_ZeroCalories: an item the model couldn't price is treated as unrecognized.
func TestSuggest_ZeroCalories(t *testing.T) {
	router, _, setMock := setupSuggestTest(t)
	setMock(http.StatusOK, openAIChatResponse(`{"item_name":"Water","qty":1,"uom":"cup","calories":0}`))

	w := doSuggestRequest(router, `{"description":"glass of water"}`)
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "unrecognized" {
		t.Errorf("expected unrecognized, got %s", w.Body.String())
	}
}
