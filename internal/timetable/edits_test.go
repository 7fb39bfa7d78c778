package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editableSection() (*Section, *Assignment, *Assignment) {
	s := NewSection("A", "2nd Year")
	math := s.Assign(Subject{Name: "Math", PeriodsPerWeek: 2}, &Teacher{Name: "T1", MaxLoad: 10})
	art := s.Assign(Subject{Name: "Art", PeriodsPerWeek: 1}, &Teacher{Name: "T2", MaxLoad: 10})
	s.Timetable[0][0] = math
	s.Timetable[1][0] = math
	s.Timetable[2][3] = art
	return s, math, art
}

func TestMoveCell(t *testing.T) {
	s, math, _ := editableSection()

	err := MoveCell([]*Section{s}, Move{Section: "A", From: Slot{0, 0}, To: Slot{3, 6}})

	require.NoError(t, err)
	assert.Nil(t, s.Timetable[0][0])
	assert.Same(t, math, s.Timetable[3][6])
	assert.Empty(t, ValidateIntegrity([]*Section{s}))
}

func TestMoveCellErrors(t *testing.T) {
	s, _, _ := editableSection()
	sections := []*Section{s}

	assert.ErrorIs(t, MoveCell(sections, Move{Section: "A", From: Slot{4, 4}, To: Slot{3, 6}}), ErrEmptySource)
	assert.ErrorIs(t, MoveCell(sections, Move{Section: "A", From: Slot{0, 0}, To: Slot{1, 0}}), ErrDestinationTaken)
	assert.ErrorIs(t, MoveCell(sections, Move{Section: "A", From: Slot{0, 0}, To: Slot{6, 0}}), ErrSlotOutOfRange)
	assert.ErrorIs(t, MoveCell(sections, Move{Section: "A", From: Slot{0, -1}, To: Slot{1, 1}}), ErrSlotOutOfRange)
	assert.ErrorIs(t, MoveCell(sections, Move{Section: "Z", From: Slot{0, 0}, To: Slot{1, 1}}), ErrSectionNotFound)
}

func TestSwapCells(t *testing.T) {
	s, math, art := editableSection()
	sections := []*Section{s}

	require.NoError(t, SwapCells(sections, Move{Section: "A", From: Slot{0, 0}, To: Slot{2, 3}}))
	assert.Same(t, art, s.Timetable[0][0])
	assert.Same(t, math, s.Timetable[2][3])

	require.NoError(t, SwapCells(sections, Move{Section: "A", From: Slot{2, 3}, To: Slot{5, 5}}))
	assert.Nil(t, s.Timetable[2][3])
	assert.Same(t, math, s.Timetable[5][5])

	assert.ErrorIs(t, SwapCells(sections, Move{Section: "A", From: Slot{4, 4}, To: Slot{4, 5}}), ErrEmptySource)
}

func TestValidateIntegrity(t *testing.T) {
	s, _, _ := editableSection()
	s.Timetable[2][3] = nil
	lab := s.Assign(Subject{Name: "Lab", PeriodsPerWeek: 3, IsLab: true, BlockSize: 3}, &Teacher{Name: "T3", MaxLoad: 10})
	s.Timetable[4][0] = lab
	s.Timetable[4][1] = lab
	s.Timetable[4][2] = lab

	issues := ValidateIntegrity([]*Section{s})

	require.Len(t, issues, 1)
	assert.Equal(t, IntegrityIssue{
		Type:     "period_count_mismatch",
		Section:  "A",
		Subject:  "Art",
		Expected: 1,
		Actual:   0,
	}, issues[0])
}

func TestValidateIntegrityLabLayout(t *testing.T) {
	cases := []struct {
		name  string
		year  string
		cells []Slot
		want  []IntegrityIssue
	}{
		{
			name:  "contiguous morning block",
			year:  "2nd Year",
			cells: []Slot{{0, 2}, {0, 3}},
			want:  []IntegrityIssue{},
		},
		{
			name:  "crosses upper-year lunch",
			year:  "2nd Year",
			cells: []Slot{{0, 3}, {0, 4}},
			want: []IntegrityIssue{
				{Type: IssueLabSpansLunch, Section: "B", Subject: "Lab", Expected: 2, Actual: 2, Slot: &Slot{0, 3}},
			},
		},
		{
			name:  "split across days",
			year:  "2nd Year",
			cells: []Slot{{0, 0}, {3, 6}},
			want: []IntegrityIssue{
				{Type: IssueLabBlockSplit, Section: "B", Subject: "Lab", Expected: 1, Actual: 2, Slot: &Slot{3, 6}},
			},
		},
		{
			name:  "first-year block after the early lunch is legal",
			year:  "1st Year",
			cells: []Slot{{2, 3}, {2, 4}},
			want:  []IntegrityIssue{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSection("B", tc.year)
			lab := s.Assign(Subject{Name: "Lab", PeriodsPerWeek: 2, IsLab: true, BlockSize: 2}, &Teacher{Name: "T", MaxLoad: 10})
			for _, c := range tc.cells {
				s.Timetable[c.Day][c.Period] = lab
			}

			issues := ValidateIntegrity([]*Section{s})

			assert.Equal(t, tc.want, issues)
			for _, issue := range issues {
				assert.True(t, issue.IsLabLayout())
			}
		})
	}
}

func TestMoveCellCanSplitLab(t *testing.T) {
	s := NewSection("C", "2nd Year")
	lab := s.Assign(Subject{Name: "Lab", PeriodsPerWeek: 3, IsLab: true, BlockSize: 3}, &Teacher{Name: "T", MaxLoad: 10})
	for p := 0; p < 3; p++ {
		s.Timetable[1][p] = lab
	}

	require.NoError(t, MoveCell([]*Section{s}, Move{Section: "C", From: Slot{1, 2}, To: Slot{1, 4}}))

	issues := ValidateIntegrity([]*Section{s})
	require.Len(t, issues, 1)
	assert.Equal(t, IssueLabBlockSplit, issues[0].Type)
}
