// Package ppssum extracts the science-exposure table from a pipeline
// summary (PPSSUM) HTML report. The report lists every EPIC exposure of an
// observation; the extraction selects which exposures are eligible for
// reduction and under which detector+exposure prefix.
package ppssum

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Modes of the slitless (PN) camera that are eligible for reduction.
var allowedPNModes = map[string]bool{
	"PrimeFullWindow":      true,
	"PrimeFullWindowExten": true,
}

// Lists holds the eligible exposures of one observation, split by detector
// family. MOS entries are prefix fragments (unit digit + exposure id, e.g.
// "1S001"); PN entries are exposure ids (e.g. "S003").
type Lists struct {
	MOS []string
	PN  []string
}

// FindSummary locates the PPS summary report for an observation:
// <root>/<obsID>/pps/*PPSSUM*.HTM.
func FindSummary(dataRoot, obsID string) (string, error) {
	pattern := filepath.Join(dataRoot, obsID, "pps", "*PPSSUM*.HTM")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no PPS summary matches %s", pattern)
	}
	return matches[0], nil
}

// ExtractFile parses the PPS summary at path.
func ExtractFile(path string) (Lists, error) {
	f, err := os.Open(path)
	if err != nil {
		return Lists{}, err
	}
	defer f.Close()
	return Extract(f)
}

// Extract parses a PPS summary document and returns the eligible exposures.
// The exposure table is the first <table> inside <div id="widetable">; its
// data rows carry the instrument (e.g. "EMOS1", "EPN") in the first cell,
// the exposure id in the second, and the observing mode in the fourth.
func Extract(r io.Reader) (Lists, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Lists{}, err
	}

	div := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" && attr(n, "id") == "widetable"
	})
	if div == nil {
		return Lists{}, fmt.Errorf("summary has no widetable section")
	}
	table := findNode(div, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "table"
	})
	if table == nil {
		return Lists{}, fmt.Errorf("widetable section has no table")
	}

	var lists Lists
	for _, cells := range tableRows(table) {
		if len(cells) < 4 {
			continue
		}
		inst := strings.TrimSpace(cells[0])
		if len(inst) < 2 {
			continue
		}
		inst = inst[1:] // strip the leading "E" of the EPIC instrument name
		expID := strings.TrimSpace(cells[1])
		mode := strings.TrimSpace(cells[3])

		switch {
		case inst == "PN":
			if allowedPNModes[mode] {
				lists.PN = append(lists.PN, expID)
			}
		case strings.HasPrefix(inst, "MOS"):
			unit := inst[len(inst)-1:]
			lists.MOS = append(lists.MOS, unit+expID)
		}
	}
	return lists, nil
}

// tableRows flattens a table into rows of cell texts, skipping rows made of
// header cells only.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	walk(table, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return
		}
		var cells []string
		header := true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "td":
				header = false
				cells = append(cells, text(c))
			case "th":
				cells = append(cells, text(c))
			}
		}
		if len(cells) > 0 && !header {
			rows = append(rows, cells)
		}
	})
	return rows
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return strings.TrimSpace(sb.String())
}
