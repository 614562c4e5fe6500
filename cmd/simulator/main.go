// Command simulator drives a running API with synthetic traffic: it creates
// exposes, then fans out votes, views and comments from a pool of fake
// sessions. Useful for eyeballing the engagement feed and the dedup behavior.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

var (
	baseURL  = flag.String("url", "http://localhost:8080", "API base URL")
	exposes  = flag.Int("exposes", 5, "number of exposes to create")
	sessions = flag.Int("sessions", 20, "number of simulated viewer sessions")
	rounds   = flag.Int("rounds", 3, "engagement rounds per session")
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

var sampleTitles = []string{
	"Contract awarded without tender",
	"Ghost workers on the payroll",
	"Missing audit funds",
	"Road project abandoned again",
	"Hospital supplies diverted",
}

var sampleComments = []string{
	"This needs a follow-up.",
	"Can anyone confirm this?",
	"Saw the same thing last year.",
	"Names should be published.",
}

func main() {
	flag.Parse()
	rand.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	exposeIDs := make([]string, 0, *exposes)
	for i := 0; i < *exposes; i++ {
		id, err := createExpose(client, i)
		if err != nil {
			log.Fatalf("create expose: %v", err)
		}
		exposeIDs = append(exposeIDs, id)
		log.Printf("created %s", id)
	}

	var views, dupViews, votes, comments int
	for s := 0; s < *sessions; s++ {
		sessionID := fmt.Sprintf("session_sim%09d", rand.Intn(1_000_000_000))
		for r := 0; r < *rounds; r++ {
			exposeID := exposeIDs[rand.Intn(len(exposeIDs))]

			newView, err := recordView(client, exposeID, sessionID)
			if err != nil {
				log.Printf("view failed: %v", err)
				continue
			}
			if newView {
				views++
			} else {
				dupViews++
			}

			if rand.Intn(2) == 0 {
				voteType := "upvote"
				if rand.Intn(4) == 0 {
					voteType = "downvote"
				}
				if err := post(client, "/api/exposes/votes", map[string]string{
					"exposeId": exposeID,
					"voteType": voteType,
				}, nil); err != nil {
					log.Printf("vote failed: %v", err)
				} else {
					votes++
				}
			}

			if rand.Intn(4) == 0 {
				if err := post(client, "/api/comments", map[string]string{
					"exposeId": exposeID,
					"text":     sampleComments[rand.Intn(len(sampleComments))],
				}, nil); err != nil {
					log.Printf("comment failed: %v", err)
				} else {
					comments++
				}
			}
		}
	}

	log.Printf("done: %d new views, %d duplicate views, %d votes, %d comments",
		views, dupViews, votes, comments)
}

func createExpose(client *http.Client, i int) (string, error) {
	var created struct {
		ID string `json:"ID"`
	}
	err := post(client, "/api/exposes", map[string]interface{}{
		"title":   sampleTitles[i%len(sampleTitles)],
		"content": fmt.Sprintf("Synthetic expose #%d generated at %s.", i, time.Now().Format(time.RFC3339)),
		"hashtag": "#simulated",
	}, &created)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func recordView(client *http.Client, exposeID, sessionID string) (bool, error) {
	payload, err := json.Marshal(map[string]string{
		"exposeId":  exposeID,
		"sessionId": sessionID,
	})
	if err != nil {
		return false, err
	}

	resp, err := client.Post(*baseURL+"/api/exposes/views", "application/json", bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	// The view endpoint reports the dedup outcome at the top level.
	var result struct {
		Success bool   `json:"success"`
		NewView bool   `json:"newView"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	if !result.Success {
		return false, fmt.Errorf("view rejected: %s", result.Error)
	}
	return result.NewView, nil
}

func post(client *http.Client, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := client.Post(*baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("%s: %s (%s)", path, env.Error, env.Code)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
