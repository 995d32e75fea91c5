package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/chekechea/core/messaging"
)

type messagingRepository struct {
	db *DB
}

func NewMessagingRepository(db *DB) messaging.Repository {
	return &messagingRepository{db: db}
}

// must be called with at least the read lock held
func (repo *messagingRepository) hydrate(msg messaging.Message) messaging.Message {
	if sender, ok := repo.db.users[msg.SenderID]; ok {
		msg.SenderName = sender.Name
		msg.SenderRole = sender.Role
	}
	if receiver, ok := repo.db.users[msg.ReceiverID]; ok {
		msg.ReceiverName = receiver.Name
	}
	return msg
}

func (repo *messagingRepository) CreateMessage(_ context.Context, msg messaging.Message) (messaging.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[msg.ReceiverID]; !ok {
		return messaging.Message{}, messaging.ErrReceiverNotFound
	}

	msg.ID = repo.db.nextID("messages")
	repo.db.messages[msg.ID] = &msg
	return repo.hydrate(msg), nil
}

func (repo *messagingRepository) GetMessageByID(_ context.Context, id int) (messaging.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if msg, ok := repo.db.messages[id]; ok {
		return repo.hydrate(*msg), nil
	}
	return messaging.Message{}, messaging.ErrNotFound
}

func (repo *messagingRepository) QueryMessagesByUserID(_ context.Context, userID int) ([]messaging.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var msgs []messaging.Message
	for _, msg := range repo.db.messages {
		if msg.SenderID == userID || msg.ReceiverID == userID {
			msgs = append(msgs, repo.hydrate(*msg))
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID > msgs[j].ID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (repo *messagingRepository) MarkMessageRead(_ context.Context, id int) (messaging.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg, ok := repo.db.messages[id]
	if !ok {
		return messaging.Message{}, messaging.ErrNotFound
	}
	msg.Status = messaging.MessageRead
	return repo.hydrate(*msg), nil
}
