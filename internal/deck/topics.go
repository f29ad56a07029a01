package deck

import "deck-dash-service/internal/domain"

// ListTopics groups valid rows by topic id, in first-seen order.
func ListTopics(rows [][]string) []domain.Topic {
	index := make(map[string]int)
	var topics []domain.Topic

	for _, rec := range ParseRecords(rows) {
		i, ok := index[rec.TopicID]
		if !ok {
			index[rec.TopicID] = len(topics)
			topics = append(topics, domain.Topic{
				ID:           rec.TopicID,
				Name:         rec.TopicName,
				PreviewImage: rec.ImageURL,
			})
			i = len(topics) - 1
		}
		topics[i].CardCount++
	}
	return topics
}
