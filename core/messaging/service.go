package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/user"
)

var (
	// ErrNotFound is returned when a message is not found.
	ErrNotFound = core.NewNotFoundError("message not found")
	// ErrReceiverNotFound is returned when sending to an unknown user.
	ErrReceiverNotFound = core.NewNotFoundError("receiver not found")
)

type (
	// Repository persists messages. Implementations denormalize sender and
	// receiver names onto each row they return.
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		GetMessageByID(ctx context.Context, id int) (Message, error)
		QueryMessagesByUserID(ctx context.Context, userID int) ([]Message, error)
		MarkMessageRead(ctx context.Context, id int) (Message, error)
	}

	// Service manages in-app messages between admins and parents.
	Service struct {
		repo     Repository
		notifSvc *notification.Service
		tx       core.Transactor
	}
)

func NewService(repo Repository, notifSvc *notification.Service, tx core.Transactor) *Service {
	return &Service{
		repo:     repo,
		notifSvc: notifSvc,
		tx:       tx,
	}
}

// Send delivers a message from the caller and notifies the receiver; both
// commit or roll back together.
func (svc *Service) Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error) {
	if err := nm.Validate(); err != nil {
		return Message{}, err
	}

	msg := Message{
		SenderID:   sender.ID,
		ReceiverID: nm.ReceiverID,
		Subject:    nm.Subject,
		Content:    nm.Content,
		Status:     MessageUnread,
		CreatedAt:  time.Now().UTC(),
	}

	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if msg, err = svc.repo.CreateMessage(ctx, msg); err != nil {
			return err
		}
		_, err = svc.notifSvc.Notify(ctx, msg.ReceiverID, "New Message",
			fmt.Sprintf("You have received a new message: %s", msg.Subject),
		)
		return err
	})
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Get returns a single message. Only the sender and the receiver may fetch
// it; an unread message fetched by its receiver is marked read.
func (svc *Service) Get(ctx context.Context, id int, actor user.User) (Message, error) {
	msg, err := svc.repo.GetMessageByID(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if actor.ID != msg.SenderID && actor.ID != msg.ReceiverID {
		return Message{}, core.NewPermissionError("you don't have permission to view this message")
	}
	if actor.ID == msg.ReceiverID && msg.Status == MessageUnread {
		if msg, err = svc.repo.MarkMessageRead(ctx, id); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}

// QueryFor returns the caller's messages, sent and received.
func (svc *Service) QueryFor(ctx context.Context, actor user.User) ([]Message, error) {
	return svc.repo.QueryMessagesByUserID(ctx, actor.ID)
}
