package kafka

// TopicPrefix namespaces every topic produced by the salon web tier.
const TopicPrefix = "salon"

// Topic builds a topic name of the form "salon.<domain>.<action>".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}
