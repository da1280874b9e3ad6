// Command gridsmoke exercises a running timegrid-api instance end to end:
// it loads a week, walks a drag gesture through pickup/hover/drop, relocates
// the event back and checks the conflict summary. Intended for manual runs
// against a dev deployment, not CI.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type weekView struct {
	WeekDates []string `json:"weekDates"`
	Days      []struct {
		Date   string `json:"date"`
		Blocks []struct {
			Event struct {
				ID        string `json:"id"`
				Date      string `json:"date"`
				StartTime string `json:"startTime"`
			} `json:"event"`
		} `json:"blocks"`
	} `json:"days"`
}

type check struct {
	name string
	err  error
}

func main() {
	var (
		base    string
		anchor  string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&anchor, "anchor", time.Now().Format("2006-01-02"), "week anchor date")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	api := base + "/api/v1"

	var checks []check
	record := func(name string, err error) {
		checks = append(checks, check{name: name, err: err})
		status := "ok"
		if err != nil {
			status = "FAIL: " + err.Error()
		}
		fmt.Printf("%-24s %s\n", name, status)
	}

	var week weekView
	record("load week", getJSON(client, api+"/grid/week?anchor="+anchor, &week))

	eventID, origin := firstEvent(week)
	if eventID == "" {
		fmt.Println("no events in the loaded week, skipping mutation checks")
	} else {
		target := map[string]string{"date": origin.date, "slot": origin.start}

		record("drag pickup", postJSON(client, api+"/grid/drag/pickup", map[string]string{"event_id": eventID}, nil))
		record("drag hover", postJSON(client, api+"/grid/drag/hover", target, nil))
		record("drag drop", postJSON(client, api+"/grid/drag/drop", target, nil))
		record("relocate", postJSON(client, api+"/grid/events/"+eventID+"/relocate",
			map[string]string{"date": origin.date, "start_time": origin.start}, nil))
	}

	var summary json.RawMessage
	record("conflict summary", getJSON(client, api+"/grid/conflicts", &summary))

	failed := 0
	for _, c := range checks {
		if c.err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("all %d checks passed\n", len(checks))
}

type cell struct {
	date  string
	start string
}

func firstEvent(week weekView) (string, cell) {
	for _, day := range week.Days {
		for _, b := range day.Blocks {
			return b.Event.ID, cell{date: b.Event.Date, start: b.Event.StartTime}
		}
	}
	return "", cell{}
}

func getJSON(client *http.Client, url string, dest interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, dest)
}

func postJSON(client *http.Client, url string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decode(resp, dest)
}

func decode(resp *http.Response, dest interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("status %d, unreadable body", resp.StatusCode)
	}
	if env.Error != nil {
		return fmt.Errorf("status %d: %s %s", resp.StatusCode, env.Error.Code, env.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if dest != nil && env.Data != nil {
		return json.Unmarshal(env.Data, dest)
	}
	return nil
}
