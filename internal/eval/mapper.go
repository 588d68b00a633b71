package eval

import "dayscore-backend/internal/models"

// MapToRecord flattens a validated response into the persisted evaluation
// shape for the given daily entry. Shape errors are impossible here: the
// response already passed ParseResponse. Narratives without a recognizable
// trailing keyword fall back to the most conservative status and are
// flagged unparsed rather than silently passed as healthy.
func MapToRecord(resp *Response, dailyEntryID int64) models.Evaluation {
	return models.Evaluation{
		DailyEntryID: dailyEntryID,

		StrategyScore:   resp.StrategyScore,
		OperationsScore: resp.OperationsScore,
		TeamScore:       resp.TeamScore,
		EfficiencyScore: resp.EfficiencyScore,
		OverallScore:    resp.OverallScore,

		PlanVsFact:      resp.PlanVsFact,
		Feedback:        resp.Feedback,
		Recommendations: resp.Recommendations,

		AlignmentDayWeek:      mapAlignmentLevel(resp.Alignment.DayToWeek),
		AlignmentWeekMonth:    mapAlignmentLevel(resp.Alignment.WeekToMonth),
		AlignmentMonthQuarter: mapAlignmentLevel(resp.Alignment.MonthToQuarter),
		AlignmentQuarterHalf:  mapAlignmentLevel(resp.Alignment.QuarterToHalf),
		AlignmentHalfYear:     mapAlignmentLevel(resp.Alignment.HalfToYear),
		AlignmentYearDream:    mapAlignmentLevel(resp.Alignment.YearToDream),
	}
}

func mapAlignmentLevel(text string) models.AlignmentLevel {
	status, ok := ParseAlignmentStatus(text)
	if !ok {
		return models.AlignmentLevel{
			Status:   models.AlignmentNo,
			Analysis: text,
			Unparsed: true,
		}
	}
	return models.AlignmentLevel{
		Status:   status,
		Analysis: text,
	}
}
