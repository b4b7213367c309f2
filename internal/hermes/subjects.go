package hermes

const (
	SubjectScoreRequest = "scorecard.score.request"
	SubjectStats        = "scorecard.stats"

	StreamName   = "SCORECARD_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectProfileCreated(profileID string) string { return "scorecard.profile." + profileID + ".created" }
func SubjectProfileDeleted(profileID string) string { return "scorecard.profile." + profileID + ".deleted" }

func SubjectScoreCompleted(requestID string) string { return "scorecard.score." + requestID + ".completed" }
func SubjectScoreFailed(requestID string) string    { return "scorecard.score." + requestID + ".failed" }
