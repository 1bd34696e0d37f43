package ppssum

import (
	"reflect"
	"strings"
	"testing"
)

// The exposure table puts the instrument in the first column, the exposure
// id in the second, and the observing mode in the fourth.
const sampleSummary = `
<html><body>
<h1>Observation 0123456789</h1>
<div id="widetable">
<table>
<tr><th>Instrument</th><th>ExpID</th><th>Type</th><th>Mode</th><th>Filter</th></tr>
<tr><td>EMOS1</td><td>S001</td><td>SCIENCE</td><td>PrimeFullWindow</td><td>Medium</td></tr>
<tr><td>EMOS2</td><td>S002</td><td>SCIENCE</td><td>PrimePartialW2</td><td>Medium</td></tr>
<tr><td>EPN</td><td>S003</td><td>SCIENCE</td><td>PrimeFullWindowExten</td><td>Thin1</td></tr>
<tr><td>EPN</td><td>U002</td><td>SCIENCE</td><td>PrimeSmallWindow</td><td>Thin1</td></tr>
<tr><td>ERM</td><td>X000</td><td>SCIENCE</td><td>Monitor</td><td></td></tr>
</table>
</div>
<div id="othertable"><table><tr><td>unrelated</td></tr></table></div>
</body></html>
`

func TestExtract(t *testing.T) {
	lists, err := Extract(strings.NewReader(sampleSummary))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Every MOS exposure is kept, keyed by unit digit + exposure id.
	wantMOS := []string{"1S001", "2S002"}
	if !reflect.DeepEqual(lists.MOS, wantMOS) {
		t.Errorf("MOS = %v, want %v", lists.MOS, wantMOS)
	}

	// Only full-window PN modes are eligible.
	wantPN := []string{"S003"}
	if !reflect.DeepEqual(lists.PN, wantPN) {
		t.Errorf("PN = %v, want %v", lists.PN, wantPN)
	}
}

func TestExtractColumnPositions(t *testing.T) {
	// Four-column rows with no filter column: the instrument must come from
	// the first cell and the mode from the fourth, so a minimal table still
	// yields both exposure lists.
	doc := `<div id="widetable"><table>
<tr><th>Instrument</th><th>ExpID</th><th>Type</th><th>Mode</th></tr>
<tr><td>EMOS1</td><td>S001</td><td>SCIENCE</td><td>PrimeFullWindow</td></tr>
<tr><td>EPN</td><td>S003</td><td>SCIENCE</td><td>PrimeFullWindowExten</td></tr>
</table></div>`

	lists, err := Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(lists.MOS, []string{"1S001"}) {
		t.Errorf("MOS = %v, want [1S001]", lists.MOS)
	}
	if !reflect.DeepEqual(lists.PN, []string{"S003"}) {
		t.Errorf("PN = %v, want [S003]", lists.PN)
	}
}

func TestExtractNoWidetable(t *testing.T) {
	if _, err := Extract(strings.NewReader("<html><body><p>empty</p></body></html>")); err == nil {
		t.Fatal("expected error for missing widetable section")
	}
}

func TestExtractEmptyTable(t *testing.T) {
	doc := `<div id="widetable"><table><tr><th>a</th><th>b</th></tr></table></div>`
	lists, err := Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(lists.MOS) != 0 || len(lists.PN) != 0 {
		t.Errorf("lists = %+v, want empty", lists)
	}
}
