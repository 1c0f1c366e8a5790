package metric

import "fmt"

// editGrid is the dynamic-programming table BarcodeDistance fills in:
// cell (i, j) holds the edit distance between the first i bases of one
// barcode (plus however much downstream sequence has been pulled in so
// far) and the first j bases of the other.
type editGrid struct {
	cols int
	cell []int
}

func newEditGrid(rows, cols int) editGrid {
	return editGrid{cols: cols, cell: make([]int, rows*cols)}
}

func (g editGrid) at(i, j int) int { return g.cell[i*g.cols+j] }
func (g editGrid) set(i, j, v int) { g.cell[i*g.cols+j] = v }

// edit names which neighboring cell produced a cell's minimum: the
// diagonal (the base matched, or a substitution was charged there), or
// an insertion/deletion was charged by stepping from the cell to the
// right or below.
type edit uint8

const (
	editMatch edit = iota
	editFromRight
	editFromBelow
)

type edits []edit

func (e edits) has(want edit) bool {
	for _, x := range e {
		if x == want {
			return true
		}
	}
	return false
}

// fillRow computes row i of the grid up through column col.
func (g editGrid) fillRow(i, col int, a, b []byte) {
	for j := 0; j <= col; j++ {
		g.fillCell(i, j, a, b)
	}
}

// fillCol computes column j of the grid up through row row.
func (g editGrid) fillCol(j, row int, a, b []byte) {
	for i := 0; i <= row; i++ {
		g.fillCell(i, j, a, b)
	}
}

// fillCell computes cell (i, j), returning which neighboring cell(s)
// produced its value.
func (g editGrid) fillCell(i, j int, a, b []byte) edits {
	if i == 0 {
		g.set(i, j, j)
		return nil
	}
	if j == 0 {
		g.set(i, j, i)
		return nil
	}
	if a[i-1] == b[j-1] {
		g.set(i, j, g.at(i-1, j-1))
		return edits{editMatch}
	}

	below := g.at(i-1, j) + 1
	diag := g.at(i-1, j-1) + 1
	right := g.at(i, j-1) + 1

	min := below
	if diag < min {
		min = diag
	}
	if right < min {
		min = right
	}
	g.set(i, j, min)

	var took edits
	if below == min {
		took = append(took, editFromBelow)
	}
	if diag == min {
		took = append(took, editMatch)
	}
	if right == min {
		took = append(took, editFromRight)
	}
	return took
}

// BarcodeDistance computes the edit distance between two equal-length
// index barcodes observed on an Index (C3 Index family) record,
// accounting for the fact that a fixed number of barcode cycles are
// always sequenced: a deletion within one barcode shifts the bases that
// follow it, so a base actually belonging to the downstream (post-index)
// sequence gets read into the barcode window. downstreamA/downstreamB
// supply enough of each read's downstream sequence to absorb that shift
// before distance is charged for it; pass "" for either when the
// downstream sequence isn't available, which degrades to a plain
// Levenshtein distance over barcodeA/barcodeB. plot.BuildSampleQC uses
// this to fold a barcode that differs from a sample's dominant observed
// sequence by only a sequencing error or two into that sample's count.
func BarcodeDistance(barcodeA, barcodeB, downstreamA, downstreamB string) int {
	if len(barcodeA) != len(barcodeB) {
		panic(fmt.Sprintf("barcodes must have equal length: %q, %q", barcodeA, barcodeB))
	}

	a := []byte(barcodeA)
	b := []byte(barcodeB)
	rows := len(a)
	cols := len(b)

	g := newEditGrid(rows+len(downstreamA)+1, cols+len(downstreamB)+1)

	i, iEnd := 1, rows
	j, jEnd := 1, cols

	var took edits
	for {
		if i <= iEnd {
			g.fillRow(i, j-1, a, b)
		}
		if j <= jEnd {
			g.fillCol(j, i-1, a, b)
		}
		took = g.fillCell(i, j, a, b)

		if i < rows {
			i++
			j++
			continue
		}

		done := true
		if took.has(editFromBelow) && len(downstreamB) > 0 {
			b = append(b, downstreamB[0])
			downstreamB = downstreamB[1:]
			done = false
			j++
			jEnd++
		}
		if took.has(editFromRight) && len(downstreamA) > 0 {
			a = append(a, downstreamA[0])
			downstreamA = downstreamA[1:]
			done = false
			i++
			iEnd++
		}
		if done {
			if g.at(rows, cols) <= g.at(i, j) {
				return g.at(rows, cols)
			}
			return g.at(i, j)
		}
	}
}
