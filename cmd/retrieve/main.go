// Command retrieve sends a single query to a running API server and prints
// the assembled context, or the raw scored documents with -json.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type retrieveRequest struct {
	Query   string            `json:"query"`
	TopK    int               `json:"top_k,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

type retrievedDoc struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type retrieveResponse struct {
	Results []retrievedDoc `json:"results"`
	Context string         `json:"context"`
	Count   int            `json:"count"`
}

func main() {
	var (
		addr    = flag.String("addr", "http://localhost:8080", "API server base URL")
		topK    = flag.Int("k", 5, "number of documents to retrieve")
		sector  = flag.String("sector", "", "restrict results to a GICS sector")
		docType = flag.String("type", "", "restrict results to a document type (profile or sector)")
		asJSON  = flag.Bool("json", false, "print the raw JSON response")
		timeout = flag.Duration("timeout", 30*time.Second, "request timeout")
	)
	flag.Parse()

	query := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "usage: retrieve [flags] <query>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	req := retrieveRequest{Query: query, TopK: *topK}
	if *sector != "" || *docType != "" {
		req.Filters = map[string]string{}
		if *sector != "" {
			req.Filters["sector"] = *sector
		}
		if *docType != "" {
			req.Filters["type"] = *docType
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		fatal(err)
	}

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Post(strings.TrimRight(*addr, "/")+"/api/retrieve", "application/json", bytes.NewReader(body))
	if err != nil {
		fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		fatal(fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error))
	}

	var out retrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fatal(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(out)
		return
	}

	for _, doc := range out.Results {
		fmt.Printf("%-16s %.4f  %s\n", doc.ID, doc.Score, doc.Metadata["name"])
	}
	fmt.Println()
	fmt.Println(out.Context)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "retrieve:", err)
	os.Exit(1)
}
