package store

func MedicationsKey(userID string) string {
	return "user:" + userID + ":medications"
}

func TakenKey(userID, date string) string {
	return "user:" + userID + ":taken:" + date
}

func ConditionsKey(userID string) string {
	return "user:" + userID + ":conditions"
}
