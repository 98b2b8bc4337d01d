package webhookpubsub

import "sync"

// webhookStore is the in-memory registry of webhooks, indexed by id and
// by topic.
type webhookStore struct {
	hooks        map[string]*Webhook
	hooksByTopic map[string][]string
	locker       *sync.RWMutex
}

func newWebhookStore() *webhookStore {
	return &webhookStore{
		hooks:        make(map[string]*Webhook),
		hooksByTopic: make(map[string][]string),
		locker:       &sync.RWMutex{},
	}
}

// add registers the hook. Adding an id that already exists is a no-op,
// the id generation is random enough to assume two hooks with the same id
// are the same hook.
func (s *webhookStore) add(hook *Webhook) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if _, ok := s.hooks[hook.ID]; ok {
		return
	}
	s.hooks[hook.ID] = hook
	s.hooksByTopic[hook.Topic] = append(s.hooksByTopic[hook.Topic], hook.ID)
}

func (s *webhookStore) remove(hookID string) bool {
	s.locker.Lock()
	defer s.locker.Unlock()

	hook, ok := s.hooks[hookID]
	if !ok {
		return false
	}
	delete(s.hooks, hookID)

	ids := s.hooksByTopic[hook.Topic]
	for i, id := range ids {
		if id == hookID {
			s.hooksByTopic[hook.Topic] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return true
}

// listByTopic returns the hooks registered for the topic plus those
// registered for all topics.
func (s *webhookStore) listByTopic(topic string) []*Webhook {
	s.locker.RLock()
	defer s.locker.RUnlock()

	ids := make([]string, 0)
	ids = append(ids, s.hooksByTopic[topic]...)
	if topic != TopicAll {
		ids = append(ids, s.hooksByTopic[TopicAll]...)
	}

	hooks := make([]*Webhook, 0, len(ids))
	for _, id := range ids {
		hooks = append(hooks, s.hooks[id])
	}
	return hooks
}
