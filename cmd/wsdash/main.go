// Command wsdash is a standalone terminal dashboard for a running relay: it
// polls /admin/recent and renders the live feed of mailbox/client lifecycle
// events as a scrolling list. It has no dependency on the relay's internal
// packages — it only talks to the admin HTTP surface, the same contract any
// external operator tooling would use.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/spf13/pflag"
)

type activity struct {
	Kind       string    `json:"kind"`
	Subject    uint64    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
}

func main() {
	addr := pflag.StringP("addr", "a", "http://localhost:8080", "relay admin base URL")
	interval := pflag.DurationP("interval", "i", time.Second, "poll interval")
	pflag.Parse()

	if err := ui.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "wsdash: failed to init terminal: %v\n", err)
		os.Exit(1)
	}
	defer ui.Close()

	list := widgets.NewList()
	list.Title = "Recent Activity"
	list.Rows = []string{"connecting..."}
	list.TextStyle = ui.NewStyle(ui.ColorWhite)
	list.WrapText = false

	status := widgets.NewParagraph()
	status.Title = "Status"
	status.Text = fmt.Sprintf("watching %s every %s — press q to quit", *addr, *interval)

	resize := func(width, height int) {
		status.SetRect(0, 0, width, 3)
		list.SetRect(0, 3, width, height)
	}
	termWidth, termHeight := ui.TerminalDimensions()
	resize(termWidth, termHeight)
	ui.Render(status, list)

	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	events := ui.PollEvents()
	for {
		select {
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				resize(payload.Width, payload.Height)
				ui.Render(status, list)
			}
		case <-ticker.C:
			activities, err := fetchRecent(client, *addr)
			if err != nil {
				status.Text = fmt.Sprintf("watching %s — error: %v", *addr, err)
				ui.Render(status)
				continue
			}
			list.Rows = formatRows(activities)
			status.Text = fmt.Sprintf("watching %s every %s — press q to quit", *addr, *interval)
			ui.Render(status, list)
		}
	}
}

func fetchRecent(client *http.Client, addr string) ([]activity, error) {
	resp, err := client.Get(addr + "/admin/recent")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out []activity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatRows(activities []activity) []string {
	if len(activities) == 0 {
		return []string{"no activity yet"}
	}
	rows := make([]string, len(activities))
	for i, a := range activities {
		rows[i] = fmt.Sprintf("[%s] %-20s subject=%d", a.OccurredAt.Format(time.TimeOnly), a.Kind, a.Subject)
	}
	return rows
}
