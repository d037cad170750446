package taxonomy

import "fmt"

// Subject is the fixed set of school subjects a notebook can belong to.
type Subject string

const (
	SubjectMath      Subject = "math"
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
	SubjectEnglish   Subject = "english"
	SubjectChinese   Subject = "chinese"
	SubjectHistory   Subject = "history"
	SubjectGeography Subject = "geography"
	SubjectPolitics  Subject = "politics"
)

var allSubjects = []Subject{
	SubjectMath,
	SubjectPhysics,
	SubjectChemistry,
	SubjectBiology,
	SubjectEnglish,
	SubjectChinese,
	SubjectHistory,
	SubjectGeography,
	SubjectPolitics,
}

func AllSubjects() []Subject {
	out := make([]Subject, len(allSubjects))
	copy(out, allSubjects)
	return out
}

func (s Subject) Valid() bool {
	for _, v := range allSubjects {
		if s == v {
			return true
		}
	}
	return false
}

func ParseSubject(raw string) (Subject, error) {
	s := Subject(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown subject %q", raw)
	}
	return s, nil
}
