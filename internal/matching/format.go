package matching

import "sort"

// Format joins matches with jobseeker names and job titles and sorts them by
// jobseeker id ascending, percent descending and job id ascending.
func Format(matches []Match, jobseekers *Jobseekers, jobs *Jobs) (*Results, error) {
	rows := make([]*ResultRow, 0, len(matches))

	for _, m := range matches {
		job := jobs.FindByID(m.JobID)
		if job == nil {
			return nil, &ConsistencyError{Kind: "job", ID: m.JobID}
		}

		seeker := jobseekers.FindByID(m.JobseekerID)
		if seeker == nil {
			return nil, &ConsistencyError{Kind: "jobseeker", ID: m.JobseekerID}
		}

		rows = append(rows, &ResultRow{
			JobseekerID:          m.JobseekerID,
			JobseekerName:        seeker.JobseekerName,
			JobID:                m.JobID,
			JobTitle:             job.JobTitle,
			MatchingSkillCount:   m.MatchingSkillCount,
			MatchingSkillPercent: m.MatchingSkillPercent,
		})
	}

	SortRows(rows)

	return &Results{Items: rows}, nil
}

// SortRows applies the result ordering in place.
func SortRows(rows []*ResultRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessRow(rows[i], rows[j])
	})
}

func lessRow(a, b *ResultRow) bool {
	if c := CompareIDs(a.JobseekerID, b.JobseekerID); c != 0 {
		return c < 0
	}
	if a.MatchingSkillPercent != b.MatchingSkillPercent {
		return a.MatchingSkillPercent > b.MatchingSkillPercent
	}
	return CompareIDs(a.JobID, b.JobID) < 0
}
