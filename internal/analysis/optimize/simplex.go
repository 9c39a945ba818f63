package optimize

import (
	"math"

	"arina/internal/domain/models"
)

// solveSimplex minimizes c.x subject to A x (signs) b with x >= 0, using a
// dense two-phase primal simplex with Bland's rule. It returns the optimal
// point and true, or nil and false when no feasible point exists (or the
// pivot limit is hit, which bounded inputs do not reach).
func solveSimplex(c []float64, A [][]float64, b []float64, signs []models.ConstraintSign) ([]float64, bool) {
	n := len(c)
	m := len(A)

	// Normalize to non-negative right-hand sides.
	rows := make([][]float64, m)
	rhs := make([]float64, m)
	sg := make([]models.ConstraintSign, m)
	for i := range A {
		rows[i] = append([]float64(nil), A[i]...)
		rhs[i] = b[i]
		sg[i] = signs[i]
		if rhs[i] < 0 {
			for j := range rows[i] {
				rows[i][j] = -rows[i][j]
			}
			rhs[i] = -rhs[i]
			switch sg[i] {
			case models.SignLE:
				sg[i] = models.SignGE
			case models.SignGE:
				sg[i] = models.SignLE
			}
		}
	}

	// Column layout: decision vars, then slack/surplus, then artificials.
	nSlack := 0
	for _, s := range sg {
		if s == models.SignLE || s == models.SignGE {
			nSlack++
		}
	}
	nArt := 0
	for _, s := range sg {
		if s != models.SignLE {
			nArt++
		}
	}
	total := n + nSlack + nArt

	t := &tableau{
		tab:   make([][]float64, m),
		basis: make([]int, m),
		total: total,
		nReal: n,
		art:   make([]bool, total),
	}
	slackCol := n
	artCol := n + nSlack
	for i := 0; i < m; i++ {
		row := make([]float64, total+1)
		copy(row, rows[i])
		row[total] = rhs[i]
		switch sg[i] {
		case models.SignLE:
			row[slackCol] = 1
			t.basis[i] = slackCol
			slackCol++
		case models.SignGE:
			row[slackCol] = -1
			slackCol++
			row[artCol] = 1
			t.art[artCol] = true
			t.basis[i] = artCol
			artCol++
		default: // equality
			row[artCol] = 1
			t.art[artCol] = true
			t.basis[i] = artCol
			artCol++
		}
		t.tab[i] = row
	}

	// Phase 1: minimize the sum of artificials.
	phase1 := make([]float64, total)
	for j := range phase1 {
		if t.art[j] {
			phase1[j] = 1
		}
	}
	if !t.iterate(phase1, false) {
		return nil, false
	}
	var infeasibility float64
	for i := range t.tab {
		if t.art[t.basis[i]] {
			infeasibility += t.tab[i][total]
		}
	}
	if infeasibility > slackTol {
		return nil, false
	}
	t.driveOutArtificials()

	// Phase 2: the real objective, artificial columns locked out.
	phase2 := make([]float64, total)
	copy(phase2, c)
	if !t.iterate(phase2, true) {
		return nil, false
	}

	x := make([]float64, n)
	for i := range t.tab {
		if t.basis[i] < n {
			x[t.basis[i]] = t.tab[i][total]
		}
	}
	return x, true
}

type tableau struct {
	tab   [][]float64 // m rows of total+1 (last column is the rhs)
	basis []int
	total int
	nReal int
	art   []bool
}

// iterate runs simplex pivots to optimality for the given cost vector.
// Bland's rule on both the entering and leaving choice prevents cycling.
// Returns false on unboundedness or pivot-limit exhaustion.
func (t *tableau) iterate(cost []float64, lockArtificials bool) bool {
	maxIter := 200 + 50*(len(t.tab)+t.total)
	for iter := 0; iter < maxIter; iter++ {
		enter := -1
		for j := 0; j < t.total; j++ {
			if lockArtificials && t.art[j] {
				continue
			}
			r := cost[j]
			for i := range t.tab {
				if cb := cost[t.basis[i]]; cb != 0 {
					r -= cb * t.tab[i][j]
				}
			}
			if r < -pivotEps {
				enter = j
				break
			}
		}
		if enter == -1 {
			return true
		}

		leave := -1
		best := math.Inf(1)
		for i := range t.tab {
			a := t.tab[i][enter]
			if a <= pivotEps {
				continue
			}
			ratio := t.tab[i][t.total] / a
			if ratio < best-pivotEps {
				best = ratio
				leave = i
			} else if ratio <= best+pivotEps && leave >= 0 && t.basis[i] < t.basis[leave] {
				leave = i
			}
		}
		if leave == -1 {
			return false
		}
		t.pivot(leave, enter)
	}
	return false
}

// driveOutArtificials pivots degenerate basic artificials onto real columns
// where possible; rows where it is not are redundant and harmless since the
// artificial stays at zero and is locked out of phase 2.
func (t *tableau) driveOutArtificials() {
	for i := range t.tab {
		if !t.art[t.basis[i]] {
			continue
		}
		for j := 0; j < t.total; j++ {
			if t.art[j] {
				continue
			}
			if math.Abs(t.tab[i][j]) > pivotEps {
				t.pivot(i, j)
				break
			}
		}
	}
}

func (t *tableau) pivot(r, c int) {
	p := t.tab[r][c]
	for j := range t.tab[r] {
		t.tab[r][j] /= p
	}
	for i := range t.tab {
		if i == r {
			continue
		}
		f := t.tab[i][c]
		if f == 0 {
			continue
		}
		for j := range t.tab[i] {
			t.tab[i][j] -= f * t.tab[r][j]
		}
	}
	t.basis[r] = c
}
