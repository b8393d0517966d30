package matching

// Overlap counts, for every jobseeker and job sharing at least one skill token,
// how many token pairs are equal. This is the size of the skill-token join
// grouped by (jobseeker, job): a token repeated on either side is counted once
// per pairing. Pairs without overlap are not returned. The order of the
// returned matches is not meaningful.
func Overlap(jobseekers *Jobseekers, jobs *Jobs) []Match {
	// skill token -> jobs requiring it, once per occurrence
	index := make(map[string][]*Job)
	for _, job := range jobs.Items {
		for _, token := range job.RequiredSkills {
			index[token] = append(index[token], job)
		}
	}

	var matches []Match
	for _, seeker := range jobseekers.Items {
		counts := make(map[*Job]int)
		// first-seen order keeps the output independent of map iteration
		var order []*Job

		for _, token := range seeker.Skills {
			for _, job := range index[token] {
				if _, ok := counts[job]; !ok {
					order = append(order, job)
				}
				counts[job]++
			}
		}

		for _, job := range order {
			count := counts[job]
			matches = append(matches, Match{
				JobseekerID:          seeker.JobseekerID,
				JobID:                job.JobID,
				MatchingSkillCount:   count,
				RequiredSkillCount:   job.RequiredSkillCount,
				MatchingSkillPercent: percent(count, job.RequiredSkillCount),
			})
		}
	}

	return matches
}

func percent(count, required int) float64 {
	if required <= 0 {
		return 0
	}
	return 100 * float64(count) / float64(required)
}
