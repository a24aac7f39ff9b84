package listsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/skybi/pokedex/internal/hashmap"
	"github.com/skybi/pokedex/internal/pokemon"
)

// Controller keeps the visible page of pokemon records and the derived page count consistent with the paginated
// remote collection and applies optimistic mutations after successful writes.
//
// A Controller is safe for concurrent use. The mutex is never held during a remote call; page loads are ordered by a
// request sequence number instead, so that only the response to the latest issued load is ever applied.
type Controller struct {
	repo     pokemon.Repository
	pageSize int
	logger   zerolog.Logger

	mtx         sync.Mutex
	items       []*pokemon.Pokemon
	totalCount  int
	currentPage int
	loadedPage  int
	pageCount   int
	notice      string
	issued      uint64
	loading     bool

	subscribers  *hashmap.NormalMap[uint64, chan struct{}]
	subscriberID atomic.Uint64
}

// New creates a new controller showing the first page of an empty collection.
// Call Mount to load the first page.
func New(repo pokemon.Repository, logger zerolog.Logger) *Controller {
	return &Controller{
		repo:        repo,
		pageSize:    pokemon.PageSize,
		logger:      logger,
		items:       []*pokemon.Pokemon{},
		currentPage: 1,
		loadedPage:  1,
		pageCount:   1,
		subscribers: hashmap.NewNormal[uint64, chan struct{}](),
	}
}

// Snapshot returns a copy of the current state
func (controller *Controller) Snapshot() State {
	controller.mtx.Lock()
	defer controller.mtx.Unlock()
	items := make([]*pokemon.Pokemon, len(controller.items))
	copy(items, controller.items)
	return State{
		Items:       items,
		TotalCount:  controller.totalCount,
		CurrentPage: controller.currentPage,
		PageSize:    controller.pageSize,
		PageCount:   controller.pageCount,
		Loading:     controller.loading,
		Notice:      controller.notice,
	}
}

// Subscribe returns a channel that receives a value whenever the state changes and a function to unsubscribe.
// Notifications are coalesced; receivers are expected to call Snapshot.
func (controller *Controller) Subscribe() (<-chan struct{}, func()) {
	id := controller.subscriberID.Add(1)
	changes := make(chan struct{}, 1)
	controller.subscribers.Set(id, changes)
	return changes, func() {
		controller.subscribers.Unset(id)
	}
}

// notifyChange does a non-blocking send to every subscriber.
// Must be called while NOT holding mtx.
func (controller *Controller) notifyChange() {
	controller.subscribers.Each(func(_ uint64, changes chan struct{}) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
}

// Mount performs the initial load of the current page
func (controller *Controller) Mount(ctx context.Context) error {
	controller.mtx.Lock()
	page := controller.currentPage
	controller.mtx.Unlock()
	return controller.LoadPage(ctx, page)
}

// Reload loads the current page again
func (controller *Controller) Reload(ctx context.Context) error {
	return controller.Mount(ctx)
}

// SetPage navigates to the given page, clamped to the range of known pages.
// The page is only loaded if it differs from the current one.
func (controller *Controller) SetPage(ctx context.Context, page int) error {
	controller.mtx.Lock()
	page = max(1, min(page, controller.pageCount))
	changed := page != controller.currentPage
	controller.mtx.Unlock()

	if !changed {
		return nil
	}
	return controller.LoadPage(ctx, page)
}

// NextPage navigates to the page after the current one, if any
func (controller *Controller) NextPage(ctx context.Context) error {
	return controller.SetPage(ctx, controller.Snapshot().CurrentPage+1)
}

// PrevPage navigates to the page before the current one, if any
func (controller *Controller) PrevPage(ctx context.Context) error {
	return controller.SetPage(ctx, controller.Snapshot().CurrentPage-1)
}

// LoadPage makes page the current page and loads its records.
// If another load is issued before the remote API responds, the response to this one is discarded and nil is
// returned. On failure the current page falls back to the page whose items are shown and only the notice changes.
func (controller *Controller) LoadPage(ctx context.Context, page int) error {
	if page < 1 {
		return &pokemon.ValidationError{Field: "page", Message: "pages start at 1"}
	}

	controller.mtx.Lock()
	controller.issued++
	seq := controller.issued
	controller.currentPage = page
	controller.loading = true
	controller.mtx.Unlock()
	controller.notifyChange()

	logger := controller.logger.With().Int("page", page).Uint64("seq", seq).Logger()
	logger.Debug().Msg("loading page")
	result, err := controller.repo.GetPage(ctx, page)

	controller.mtx.Lock()
	if seq != controller.issued || page != controller.currentPage {
		controller.mtx.Unlock()
		logger.Debug().Err(err).Msg("discarding stale page response")
		return nil
	}
	controller.loading = false
	if err != nil {
		// The shown page may have been deleted in the meantime
		controller.currentPage = max(1, min(controller.loadedPage, controller.pageCount))
		canceled := errors.Is(err, context.Canceled)
		if !canceled {
			controller.notice = noticeFor("load the page", err)
		}
		controller.mtx.Unlock()
		controller.notifyChange()
		if canceled {
			logger.Debug().Err(err).Msg("page load canceled")
		} else {
			logger.Warn().Err(err).Msg("could not load page")
		}
		return err
	}
	controller.items = append(make([]*pokemon.Pokemon, 0, len(result.List)), result.List...)
	controller.totalCount = result.Count
	controller.loadedPage = page
	controller.recomputePageCount()
	controller.notice = ""
	controller.mtx.Unlock()
	controller.notifyChange()
	return nil
}

// AddRecord creates a new record at the remote API.
// If the current page is the last one and still has room, the record is appended to the visible items right away;
// otherwise it only shows up once the page containing it is loaded. The total count is incremented either way.
func (controller *Controller) AddRecord(ctx context.Context, id int64, name string) error {
	if err := pokemon.ValidateID(id); err != nil {
		return err
	}

	record := &pokemon.Pokemon{ID: id, Name: name}
	if err := controller.repo.Create(ctx, record); err != nil {
		controller.fail("add the pokemon", err)
		return err
	}

	controller.mtx.Lock()
	onLastPage := controller.currentPage == controller.loadedPage && controller.currentPage == controller.pageCount
	if onLastPage && len(controller.items) < controller.pageSize {
		controller.items = append(controller.cloneItems(), record)
	}
	controller.totalCount++
	controller.recomputePageCount()
	controller.notice = ""
	controller.mtx.Unlock()
	controller.notifyChange()

	controller.logger.Debug().Int64("id", id).Msg("added pokemon")
	return nil
}

// DeleteRecord deletes a record at the remote API and removes it from the visible items if present.
// If the current page is out of range afterwards, the controller steps back by one page and loads it.
func (controller *Controller) DeleteRecord(ctx context.Context, id int64) error {
	if err := controller.repo.Delete(ctx, id); err != nil {
		controller.fail("delete the pokemon", err)
		return err
	}

	controller.mtx.Lock()
	items := make([]*pokemon.Pokemon, 0, len(controller.items))
	for _, obj := range controller.items {
		if obj.ID != id {
			items = append(items, obj)
		}
	}
	controller.items = items
	controller.totalCount = max(0, controller.totalCount-1)
	controller.recomputePageCount()
	controller.notice = ""
	retreat := controller.currentPage > controller.pageCount && controller.currentPage > 1
	if retreat {
		controller.currentPage--
	}
	page := controller.currentPage
	controller.mtx.Unlock()
	controller.notifyChange()

	controller.logger.Debug().Int64("id", id).Bool("retreat", retreat).Msg("deleted pokemon")
	if retreat {
		return controller.LoadPage(ctx, page)
	}
	return nil
}

func (controller *Controller) fail(action string, err error) {
	if errors.Is(err, context.Canceled) {
		controller.logger.Debug().Err(err).Msgf("canceled while trying to %s", action)
		return
	}
	controller.mtx.Lock()
	controller.notice = noticeFor(action, err)
	controller.mtx.Unlock()
	controller.notifyChange()
	controller.logger.Warn().Err(err).Msgf("could not %s", action)
}

// recomputePageCount must be called while holding mtx
func (controller *Controller) recomputePageCount() {
	controller.pageCount = pokemon.PageCount(controller.totalCount, controller.pageSize)
}

// cloneItems must be called while holding mtx
func (controller *Controller) cloneItems() []*pokemon.Pokemon {
	items := make([]*pokemon.Pokemon, len(controller.items), len(controller.items)+1)
	copy(items, controller.items)
	return items
}

func noticeFor(action string, err error) string {
	if pokemon.IsUpstream(err) {
		return "Could not " + action + ": the pokemon service is unavailable. Please try again."
	}
	return "Could not " + action + "."
}
