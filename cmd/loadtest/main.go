package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	defaultBaseURL = "http://localhost:8080"
	targetRPS      = 20
	testDuration   = 1 * time.Minute
	poolSize       = 5
)

var (
	baseURL = defaultBaseURL
	rng     *rand.Rand
	jsonHdr = http.Header{"Content-Type": []string{"application/json"}}
)

type createTeamRequest struct {
	TeamName string `json:"team_name"`
}

type addReviewerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type teamResponse struct {
	Team struct {
		Id string `json:"team_id"`
	} `json:"team"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/loadtest <scenario>")
		fmt.Println("Scenarios: health, next, assign, undo, all")
		os.Exit(1)
	}
	if v := os.Getenv("LOADTEST_BASE_URL"); v != "" {
		baseURL = v
	}

	scenario := os.Args[1]
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))

	var metrics vegeta.Metrics
	var err error

	switch scenario {
	case "health":
		metrics, err = testHealth()
	case "next":
		metrics, err = testNext()
	case "assign":
		metrics, err = testAssign()
	case "undo":
		metrics, err = testUndo()
	case "all":
		metrics, err = testAll()
	default:
		fmt.Printf("Unknown scenario: %s\n", scenario)
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	printMetrics(metrics)
}

func testHealth() (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: "GET",
		URL:    baseURL + "/health",
	})

	return runAttack(targeter, "Health Check")
}

func testNext() (vegeta.Metrics, error) {
	teamId, err := setupTeam()
	if err != nil {
		return vegeta.Metrics{}, err
	}

	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "GET",
			URL:    teamURL(teamId, "/next"),
		},
		vegeta.Target{
			Method: "GET",
			URL:    teamURL(teamId, "/feed"),
		},
	)

	return runAttack(targeter, "Next Preview")
}

func testAssign() (vegeta.Metrics, error) {
	teamId, err := setupTeam()
	if err != nil {
		return vegeta.Metrics{}, err
	}

	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: "POST",
		URL:    teamURL(teamId, "/assignments/next"),
		Header: jsonHdr,
	})

	return runAttack(targeter, "Assign Next")
}

// testUndo назначение и отмена парами, счётчики остаются около нуля
func testUndo() (vegeta.Metrics, error) {
	teamId, err := setupTeam()
	if err != nil {
		return vegeta.Metrics{}, err
	}

	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "POST",
			URL:    teamURL(teamId, "/assignments/next"),
			Header: jsonHdr,
		},
		vegeta.Target{
			Method: "POST",
			URL:    teamURL(teamId, "/assignments/undo"),
			Header: jsonHdr,
		},
	)

	return runAttack(targeter, "Assign And Undo")
}

func testAll() (vegeta.Metrics, error) {
	teamId, err := setupTeam()
	if err != nil {
		return vegeta.Metrics{}, err
	}

	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/health",
		},
		vegeta.Target{
			Method: "GET",
			URL:    teamURL(teamId, "/next"),
		},
		vegeta.Target{
			Method: "POST",
			URL:    teamURL(teamId, "/assignments/next"),
			Header: jsonHdr,
		},
		vegeta.Target{
			Method: "GET",
			URL:    teamURL(teamId, "/assignments?limit=20"),
		},
		vegeta.Target{
			Method: "POST",
			URL:    teamURL(teamId, "/assignments/undo"),
			Header: jsonHdr,
		},
		vegeta.Target{
			Method: "GET",
			URL:    teamURL(teamId, "/snapshots"),
		},
	)

	return runAttack(targeter, "All Endpoints")
}

func teamURL(teamId, path string) string {
	return baseURL + "/teams/" + teamId + path
}

// setupTeam создаёт команду с пулом ревьюеров до начала атаки
func setupTeam() (string, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	teamName := fmt.Sprintf("load_team_%d", rng.Intn(1_000_000))

	var team teamResponse
	if err := postJSON(client, baseURL+"/teams", createTeamRequest{TeamName: teamName}, &team); err != nil {
		return "", fmt.Errorf("create team: %w", err)
	}

	for i := 0; i < poolSize; i++ {
		req := addReviewerRequest{
			Name:  fmt.Sprintf("reviewer_%d", i),
			Email: fmt.Sprintf("reviewer_%d@%s.load", i, teamName),
		}
		if err := postJSON(client, teamURL(team.Team.Id, "/reviewers"), req, nil); err != nil {
			return "", fmt.Errorf("add reviewer: %w", err)
		}
	}

	return team.Team.Id, nil
}

func postJSON(client *http.Client, url string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func runAttack(targeter vegeta.Targeter, name string) (vegeta.Metrics, error) {
	rate := vegeta.Rate{Freq: targetRPS, Per: time.Second}
	attacker := vegeta.NewAttacker()

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, testDuration, name) {
		metrics.Add(res)
	}
	metrics.Close()

	return metrics, nil
}

func printMetrics(metrics vegeta.Metrics) {
	fmt.Printf("\n=== Load Test Results ===\n\n")
	fmt.Printf("Requests Total:     %d\n", metrics.Requests)
	fmt.Printf("Success Rate:       %.2f%%\n", metrics.Success*100)
	fmt.Printf("Duration:           %v\n", metrics.Duration)

	if metrics.Requests > 0 {
		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Mean:             %v\n", metrics.Latencies.Mean)
		fmt.Printf("  P50:              %v\n", metrics.Latencies.P50)
		fmt.Printf("  P95:              %v\n", metrics.Latencies.P95)
		fmt.Printf("  P99:              %v\n", metrics.Latencies.P99)
		fmt.Printf("  Max:              %v\n", metrics.Latencies.Max)

		fmt.Printf("\nThroughput:\n")
		fmt.Printf("  Requests/sec:     %.2f\n", metrics.Rate)

		fmt.Printf("\nStatus Codes:\n")
		for code, count := range metrics.StatusCodes {
			fmt.Printf("  %s: %d\n", code, count)
		}

		// 409 на undo при пустом журнале ожидаем, это не ошибка сервиса
		fmt.Printf("\nErrors:\n")
		if len(metrics.Errors) > 0 {
			for _, err := range metrics.Errors {
				fmt.Printf("  %s\n", err)
			}
		} else {
			fmt.Printf("  None\n")
		}
	}
	fmt.Printf("\n")
}
