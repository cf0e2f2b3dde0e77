package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	checkEndpoint("GET", "/health", nil, 200)
	checkEndpoint("GET", "/models", nil, 200)
	checkEndpoint("GET", "/quotes?symbols=AAPL,MSFT", nil, 200)

	userID := fmt.Sprintf("e2e-user-%d", time.Now().UnixNano())
	portfolioID := createPortfolio(userID)
	fmt.Printf("Created portfolio ID: %d\n", portfolioID)
	base := fmt.Sprintf("/portfolios/%d", portfolioID)

	assets := []map[string]interface{}{
		{"symbol": "AAPL", "asset_type": "stock", "quantity": "10", "price": "190"},
		{"symbol": "BND", "asset_type": "bond", "quantity": "20", "price": "72"},
		{"symbol": "USD", "asset_type": "cash", "value": "1000"},
	}
	for _, a := range assets {
		checkEndpoint("POST", base+"/assets", a, 201)
	}

	// No targets yet.
	checkEndpoint("GET", base+"/rebalance", nil, 400)
	checkEndpoint("POST", base+"/allocations", map[string]interface{}{"symbol": "AAPL", "target_percentage": 50}, 201)
	checkEndpoint("POST", base+"/allocations", map[string]interface{}{"symbol": "AAPL", "target_percentage": 60}, 200)

	checkEndpoint("PUT", base, map[string]interface{}{"name": "e2e renamed"}, 200)
	checkEndpoint("GET", base, nil, 200)
	checkEndpoint("GET", base+"/allocation", nil, 200)
	checkEndpoint("GET", base+"/rebalance", nil, 200)
	checkEndpoint("GET", base+"/rebalance/moderate", nil, 200)
	checkEndpoint("GET", base+"/rebalance/conservative?decompose_sells=true", nil, 200)
	checkEndpoint("GET", base+"/rebalance/unknown", nil, 404)
	checkEndpoint("GET", "/users/"+userID+"/portfolios", nil, 200)

	checkEndpoint("DELETE", base, nil, 200)
	checkEndpoint("GET", base+"/allocation", nil, 404)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, body interface{}, expectedStatus int) []byte {
	fmt.Printf("Testing %s %s...\n", method, path)
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, baseURL+path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return respBody
}

func createPortfolio(userID string) int64 {
	fmt.Println("Creating portfolio...")
	body := checkEndpoint("POST", "/portfolios", map[string]interface{}{
		"user_id":     userID,
		"name":        "e2e",
		"description": "smoke test portfolio",
	}, 201)

	var res struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &res); err != nil || res.ID == 0 {
		log.Fatalf("Create portfolio returned no id: %s", string(body))
	}
	return res.ID
}
