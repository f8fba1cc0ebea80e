package domain

// VisitorRegistry remembers the chats that talked to the assistant so announcements can reach them.
// Saving a known chat again is a no-op; ListChatIDs returns ids in ascending order.
type VisitorRegistry interface {
	SaveUser(chatID int64) error
	ListChatIDs() ([]int64, error)
}
