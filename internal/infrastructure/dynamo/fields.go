package dynamo

// DynamoDB attribute names stamped by the repos themselves. Application
// services name the fields they change; the repos only add bookkeeping.
const (
	fieldUpdatedAt = "updated_at"
)
