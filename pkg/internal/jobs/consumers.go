package jobs

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/queue"
)

const (
	// ConsumerGallerySaved 项目保存后清空图库缓存.
	ConsumerGallerySaved = "gallery.cache.saved"
	// ConsumerGalleryDeleted 项目删除后清空图库缓存.
	ConsumerGalleryDeleted = "gallery.cache.deleted"
)

// RegisterConsumers 在 MQ Router 上注册图库缓存失效处理器，需在 mgr.MQ.Run 之前调用.
// 多实例部署共用 KV 时，任一实例保存项目都会让其余实例的图库缓存失效.
func RegisterConsumers(mgr *storage.Manager) error {
	if mgr == nil || mgr.MQ == nil {
		return fmt.Errorf("mq client is nil")
	}

	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	mgr.MQ.AddConsumer(ConsumerGallerySaved, queue.TopicProjectSaved, invalidateGallery(baseCtx))
	mgr.MQ.AddConsumer(ConsumerGalleryDeleted, queue.TopicProjectDeleted, invalidateGallery(baseCtx))

	return nil
}

func invalidateGallery(ctx context.Context) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		env, err := queue.ParseWatermillMessage[queue.ProjectPayload](msg)
		if err != nil {
			// 无法解析的消息直接丢弃，避免反复重投
			log.Logger().Warn().Err(err).Str("uuid", msg.UUID).Msg("drop malformed project event")
			return nil
		}

		service.NewProjectService(ctx).InvalidateGallery(ctx)

		log.Logger().Debug().
			Str("topic", env.Header.Topic).
			Str("project", env.Payload.ID).
			Msg("gallery cache invalidated")

		return nil
	}
}
