package curriculum

// UnrankedOrder is the sort order given to grade roots missing from the rank
// table, so they sink below every ranked grade.
const UnrankedOrder = 99

var gradeRanks = map[string]int{
	"七年级上": 1,
	"七年级下": 2,
	"八年级上": 3,
	"八年级下": 4,
	"九年级上": 5,
	"九年级下": 6,
}

// GradeRank returns the display rank of a grade-semester label.
func GradeRank(label string) int {
	if rank, ok := gradeRanks[label]; ok {
		return rank
	}
	return UnrankedOrder
}
