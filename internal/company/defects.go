// Counter-triggered defect accrual. Every DefectTrigger units a company
// produces, exactly one is defective; the counter carries across days.
package company

// GenerateDefects consumes count produced units against the defect counter
// and returns how many defects fired. The result equals
// (counter+count)/trigger and the counter ends at (counter+count)%trigger.
func (s *State) GenerateDefects(count int) int {
	trigger := s.Profile.DefectTrigger
	defects := 0
	remaining := count

	for remaining > 0 {
		needed := trigger - s.DefectCounter
		if remaining >= needed {
			// Landing exactly on the trigger resets to 0.
			defects++
			remaining -= needed
			s.DefectCounter = 0
		} else {
			s.DefectCounter += remaining
			remaining = 0
		}
	}

	s.TotalDefects += defects
	s.DefectHistory = append(s.DefectHistory, DefectRecord{
		Seq:        len(s.DefectHistory) + 1,
		Production: count,
		Defects:    defects,
	})

	return defects
}
