package matador

import "time"

const (
	CycleLength     = 28
	DietPhaseLength = 14
)

type Phase string

const (
	PhaseNone        Phase = "none"
	PhaseDiet        Phase = "diet"
	PhaseMaintenance Phase = "maintenance"
)

// CycleState is the projection of a cycle start date onto "now". It is
// recomputed on every read and never stored.
type CycleState struct {
	DayInCycle    int   `json:"day_in_cycle"`
	Phase         Phase `json:"phase"`
	DaysRemaining int   `json:"days_remaining"`
	CycleNumber   int   `json:"cycle_number"`
}

// Active reports whether a cycle is running.
func (s CycleState) Active() bool { return s.Phase != PhaseNone && s.DayInCycle > 0 }

func (s CycleState) IsDietPhase() bool        { return s.Phase == PhaseDiet }
func (s CycleState) IsMaintenancePhase() bool { return s.Phase == PhaseMaintenance }

// ComputeCycleState maps a cycle start date and now onto the 28-day cycle.
// A nil start means no active cycle. The cycle repeats forever; a start
// date in the future is projected backwards onto the same 28-day grid.
func ComputeCycleState(start *time.Time, now time.Time, cal Calendar) CycleState {
	if start == nil || start.IsZero() {
		return CycleState{Phase: PhaseNone}
	}

	days := cal.DaysBetween(*start, now)
	offset := ((days % CycleLength) + CycleLength) % CycleLength
	day := offset + 1

	cycleNumber := 1
	if days >= 0 {
		cycleNumber = days/CycleLength + 1
	}

	if day <= DietPhaseLength {
		return CycleState{
			DayInCycle:    day,
			Phase:         PhaseDiet,
			DaysRemaining: DietPhaseLength - day + 1,
			CycleNumber:   cycleNumber,
		}
	}
	return CycleState{
		DayInCycle:    day,
		Phase:         PhaseMaintenance,
		DaysRemaining: CycleLength - day + 1,
		CycleNumber:   cycleNumber,
	}
}
