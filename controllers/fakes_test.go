package controllers

import (
	"context"
	"fmt"
	"mime/multipart"
	"slices"
	"sync"
	"time"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/media"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func pageOf[T any](items []T) utils.Page[T] {
	return utils.Page[T]{Items: items, Total: int64(len(items))}
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[bson.ObjectID]*models.User{}}
}

func (f *fakeUsers) add(u models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	f.users[u.ID] = &u
	return u
}

func (f *fakeUsers) get(id bson.ObjectID) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.users[id]
}

func (f *fakeUsers) find(match func(*models.User) bool) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return *u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	if taken, _ := f.Taken(context.Background(), user.Username, user.Email, bson.NilObjectID); taken {
		return database.ErrConflict
	}
	*user = f.add(*user)
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id bson.ObjectID) (models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) FindByLogin(_ context.Context, username, email string) (models.User, error) {
	return f.find(func(u *models.User) bool {
		return (username != "" && u.Username == username) || (email != "" && u.Email == email)
	})
}

func (f *fakeUsers) Taken(_ context.Context, username, email string, except bson.ObjectID) (bool, error) {
	_, err := f.find(func(u *models.User) bool {
		return u.ID != except && ((username != "" && u.Username == username) || (email != "" && u.Email == email))
	})
	return err == nil, nil
}

func (f *fakeUsers) List(_ context.Context, _ string, _ utils.PageQuery) (utils.Page[models.User], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []models.User
	for _, u := range f.users {
		items = append(items, *u)
	}
	return pageOf(items), nil
}

func (f *fakeUsers) mutate(id bson.ObjectID, fn func(*models.User) error) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	if err := fn(u); err != nil {
		return models.User{}, err
	}
	return *u, nil
}

func (f *fakeUsers) UpdateFields(_ context.Context, id bson.ObjectID, fields bson.M) (models.User, error) {
	return f.mutate(id, func(u *models.User) error {
		for k, v := range fields {
			s := v.(string)
			switch k {
			case "fullName":
				u.FullName = s
			case "username":
				u.Username = s
			case "email":
				u.Email = s
			case "avatar":
				u.Avatar = s
			case "coverImage":
				u.CoverImage = s
			default:
				return fmt.Errorf("unexpected field %s", k)
			}
		}
		return nil
	})
}

func (f *fakeUsers) SetRefreshToken(_ context.Context, id bson.ObjectID, hash string) error {
	_, err := f.mutate(id, func(u *models.User) error { u.RefreshToken = hash; return nil })
	return err
}

func (f *fakeUsers) RotateRefreshToken(_ context.Context, id bson.ObjectID, oldHash, newHash string) error {
	_, err := f.mutate(id, func(u *models.User) error {
		if u.RefreshToken != oldHash {
			return database.ErrNotFound
		}
		u.RefreshToken = newHash
		return nil
	})
	return err
}

func (f *fakeUsers) SetResetToken(_ context.Context, id bson.ObjectID, hash string, expire time.Time) error {
	_, err := f.mutate(id, func(u *models.User) error {
		u.ResetPasswordToken = hash
		u.ResetPasswordExpire = &expire
		return nil
	})
	return err
}

func (f *fakeUsers) ResetPassword(_ context.Context, tokenHash, passwordHash string, now time.Time) (models.User, error) {
	u, err := f.find(func(u *models.User) bool {
		return u.ResetPasswordToken == tokenHash && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now)
	})
	if err != nil {
		return models.User{}, err
	}
	return f.mutate(u.ID, func(u *models.User) error {
		u.Password = passwordHash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = nil
		u.RefreshToken = ""
		return nil
	})
}

func (f *fakeUsers) SetPassword(_ context.Context, id bson.ObjectID, passwordHash string) error {
	_, err := f.mutate(id, func(u *models.User) error {
		u.Password = passwordHash
		u.RefreshToken = ""
		return nil
	})
	return err
}

func (f *fakeUsers) AddToWatchHistory(_ context.Context, userID, videoID bson.ObjectID) error {
	_, err := f.mutate(userID, func(u *models.User) error {
		for _, id := range u.WatchHistory {
			if id == videoID {
				return nil
			}
		}
		u.WatchHistory = append(u.WatchHistory, videoID)
		return nil
	})
	return err
}

func (f *fakeUsers) WatchHistory(_ context.Context, userID bson.ObjectID, _ utils.PageQuery) (utils.Page[models.VideoCard], error) {
	u := f.get(userID)
	var items []models.VideoCard
	for _, id := range u.WatchHistory {
		items = append(items, models.VideoCard{ID: id})
	}
	return pageOf(items), nil
}

func (f *fakeUsers) ChannelProfile(_ context.Context, username string, _ bson.ObjectID) (models.ChannelProfile, error) {
	u, err := f.find(func(u *models.User) bool { return u.Username == username })
	if err != nil {
		return models.ChannelProfile{}, err
	}
	return models.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
}

func (f *fakeUsers) Delete(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeVideos struct {
	mu      sync.Mutex
	videos  map[bson.ObjectID]*models.Video
	filters []database.VideoFilter
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{videos: map[bson.ObjectID]*models.Video{}}
}

func (f *fakeVideos) add(v models.Video) models.Video {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID.IsZero() {
		v.ID = bson.NewObjectID()
	}
	f.videos[v.ID] = &v
	return v
}

func (f *fakeVideos) Create(_ context.Context, video *models.Video) error {
	*video = f.add(*video)
	return nil
}

func (f *fakeVideos) FindByID(_ context.Context, id bson.ObjectID) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return models.Video{}, database.ErrNotFound
	}
	return *v, nil
}

func (f *fakeVideos) List(_ context.Context, filter database.VideoFilter, _ utils.PageQuery) (utils.Page[models.VideoCard], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	var items []models.VideoCard
	for _, v := range f.videos {
		if filter.Owner != nil && v.Owner != *filter.Owner {
			continue
		}
		if !v.IsPublished && !filter.IncludeUnpublished {
			continue
		}
		items = append(items, models.VideoCard{ID: v.ID, Title: v.Title, IsPublished: v.IsPublished})
	}
	return pageOf(items), nil
}

func (f *fakeVideos) IncrementViews(_ context.Context, id bson.ObjectID) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return models.Video{}, database.ErrNotFound
	}
	v.Views++
	return *v, nil
}

func (f *fakeVideos) UpdateFields(_ context.Context, id bson.ObjectID, fields bson.M) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return models.Video{}, database.ErrNotFound
	}
	for k, val := range fields {
		switch k {
		case "title":
			v.Title = val.(string)
		case "description":
			v.Description = val.(string)
		case "isPublished":
			v.IsPublished = val.(bool)
		case "videoUrl":
			v.VideoURL = val.(string)
		case "thumbnail":
			v.Thumbnail = val.(string)
		case "duration":
			v.Duration = val.(float64)
		}
	}
	return *v, nil
}

func (f *fakeVideos) Delete(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

type fakePlaylists struct {
	mu        sync.Mutex
	playlists map[bson.ObjectID]*models.Playlist
	canEdit   []bool
}

func newFakePlaylists() *fakePlaylists {
	return &fakePlaylists{playlists: map[bson.ObjectID]*models.Playlist{}}
}

func (f *fakePlaylists) add(p models.Playlist) models.Playlist {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	f.playlists[p.ID] = &p
	return p
}

func (f *fakePlaylists) Create(_ context.Context, p *models.Playlist) error {
	*p = f.add(*p)
	return nil
}

func (f *fakePlaylists) FindByID(_ context.Context, id bson.ObjectID) (models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[id]
	if !ok {
		return models.Playlist{}, database.ErrNotFound
	}
	out := *p
	out.Videos = append([]models.PlaylistVideo(nil), p.Videos...)
	return out, nil
}

func (f *fakePlaylists) ListByOwner(_ context.Context, owner bson.ObjectID, includeUnpublished bool, _ utils.PageQuery) (utils.Page[models.Playlist], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []models.Playlist
	for _, p := range f.playlists {
		if p.Owner == owner && (p.IsPublished || includeUnpublished) {
			items = append(items, *p)
		}
	}
	return pageOf(items), nil
}

func (f *fakePlaylists) mutate(id bson.ObjectID, fn func(*models.Playlist) error) (models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[id]
	if !ok {
		return models.Playlist{}, database.ErrNotFound
	}
	if err := fn(p); err != nil {
		return models.Playlist{}, err
	}
	return *p, nil
}

func (f *fakePlaylists) AddVideo(_ context.Context, id bson.ObjectID, entry models.PlaylistVideo) (models.Playlist, error) {
	return f.mutate(id, func(p *models.Playlist) error {
		if p.IndexOf(entry.Video) >= 0 {
			return database.ErrConflict
		}
		p.Videos = append(p.Videos, entry)
		return nil
	})
}

func (f *fakePlaylists) RemoveVideo(_ context.Context, id, video bson.ObjectID, order *int) (models.Playlist, error) {
	return f.mutate(id, func(p *models.Playlist) error {
		i := p.IndexOf(video)
		if i < 0 || (order != nil && p.Videos[i].Order != *order) {
			return database.ErrNotFound
		}
		p.Videos = append(p.Videos[:i], p.Videos[i+1:]...)
		return nil
	})
}

func (f *fakePlaylists) ReplaceVideos(_ context.Context, id bson.ObjectID, videos []models.PlaylistVideo) (models.Playlist, error) {
	return f.mutate(id, func(p *models.Playlist) error { p.Videos = videos; return nil })
}

func (f *fakePlaylists) UpdateFields(_ context.Context, id bson.ObjectID, fields bson.M) (models.Playlist, error) {
	return f.mutate(id, func(p *models.Playlist) error {
		for k, v := range fields {
			switch k {
			case "title":
				p.Title = v.(string)
			case "description":
				p.Description = v.(string)
			case "thumbnail":
				p.Thumbnail = v.(string)
			case "isPublished":
				p.IsPublished = v.(bool)
			}
		}
		return nil
	})
}

func (f *fakePlaylists) Videos(_ context.Context, id bson.ObjectID, canEdit bool, _ utils.PageQuery) (utils.Page[models.PlaylistEntry], error) {
	p, err := f.FindByID(context.Background(), id)
	if err != nil {
		return utils.Page[models.PlaylistEntry]{}, err
	}
	f.mu.Lock()
	f.canEdit = append(f.canEdit, canEdit)
	f.mu.Unlock()
	var items []models.PlaylistEntry
	for _, v := range p.Videos {
		items = append(items, models.PlaylistEntry{ID: v.Video, Order: v.Order, IsDeletable: canEdit, IsReorderable: canEdit})
	}
	return pageOf(items), nil
}

func (f *fakePlaylists) Delete(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.playlists[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.playlists, id)
	return nil
}

type fakeComments struct {
	mu       sync.Mutex
	comments map[bson.ObjectID]*models.Comment
	deleted  []bson.ObjectID
}

func newFakeComments() *fakeComments {
	return &fakeComments{comments: map[bson.ObjectID]*models.Comment{}}
}

func (f *fakeComments) add(cm models.Comment) models.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cm.ID.IsZero() {
		cm.ID = bson.NewObjectID()
	}
	f.comments[cm.ID] = &cm
	return cm
}

func (f *fakeComments) Create(_ context.Context, cm *models.Comment) error {
	if cm.Parent != nil {
		f.mu.Lock()
		parent, ok := f.comments[*cm.Parent]
		f.mu.Unlock()
		if !ok {
			return database.ErrNotFound
		}
		*cm = f.add(*cm)
		f.mu.Lock()
		parent.Replies = append(parent.Replies, cm.ID)
		f.mu.Unlock()
		return nil
	}
	*cm = f.add(*cm)
	return nil
}

func (f *fakeComments) FindByID(_ context.Context, id bson.ObjectID) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, ok := f.comments[id]
	if !ok {
		return models.Comment{}, database.ErrNotFound
	}
	return *cm, nil
}

func (f *fakeComments) list(match func(*models.Comment) bool) utils.Page[models.CommentView] {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []models.CommentView
	for _, cm := range f.comments {
		if match(cm) {
			items = append(items, models.CommentView{ID: cm.ID, Content: cm.Content, Video: cm.Video, Parent: cm.Parent, ReplyCount: int64(len(cm.Replies))})
		}
	}
	return pageOf(items)
}

func (f *fakeComments) ListByVideo(_ context.Context, video bson.ObjectID, _ utils.PageQuery) (utils.Page[models.CommentView], error) {
	return f.list(func(cm *models.Comment) bool { return cm.Video == video && cm.Parent == nil }), nil
}

func (f *fakeComments) ListReplies(_ context.Context, parent bson.ObjectID, _ utils.PageQuery) (utils.Page[models.CommentView], error) {
	return f.list(func(cm *models.Comment) bool { return cm.Parent != nil && *cm.Parent == parent }), nil
}

func (f *fakeComments) Delete(_ context.Context, cm models.Comment) ([]bson.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[cm.ID]; !ok {
		return nil, database.ErrNotFound
	}
	removed := []bson.ObjectID{cm.ID}
	for i := 0; i < len(removed); i++ {
		for id, other := range f.comments {
			if other.Parent != nil && *other.Parent == removed[i] {
				removed = append(removed, id)
			}
		}
	}
	for _, id := range removed {
		delete(f.comments, id)
	}
	if cm.Parent != nil {
		if parent, ok := f.comments[*cm.Parent]; ok {
			parent.Replies = slices.DeleteFunc(parent.Replies, func(id bson.ObjectID) bool { return id == cm.ID })
		}
	}
	f.deleted = append(f.deleted, removed...)
	return removed, nil
}

type fakeLikes struct {
	mu     sync.Mutex
	likes  map[string]models.Like
	counts int
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{likes: map[string]models.Like{}}
}

func likeKey(by bson.ObjectID, kind models.ResourceType, target bson.ObjectID) string {
	return by.Hex() + ":" + string(kind) + ":" + target.Hex()
}

func (f *fakeLikes) Like(_ context.Context, like models.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kind, target := like.Target()
	key := likeKey(like.LikedBy, kind, target)
	if _, ok := f.likes[key]; ok {
		return database.ErrConflict
	}
	f.likes[key] = like
	return nil
}

func (f *fakeLikes) Unlike(_ context.Context, by bson.ObjectID, kind models.ResourceType, target bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := likeKey(by, kind, target)
	if _, ok := f.likes[key]; !ok {
		return database.ErrNotFound
	}
	delete(f.likes, key)
	return nil
}

func (f *fakeLikes) Count(_ context.Context, kind models.ResourceType, target bson.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	var n int64
	for _, l := range f.likes {
		if k, t := l.Target(); k == kind && t == target {
			n++
		}
	}
	return n, nil
}

type fakeSubscriptions struct {
	mu   sync.Mutex
	subs map[[2]bson.ObjectID]bool
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{subs: map[[2]bson.ObjectID]bool{}}
}

func (f *fakeSubscriptions) Subscribe(_ context.Context, subscriber, channel bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]bson.ObjectID{subscriber, channel}
	if f.subs[key] {
		return database.ErrConflict
	}
	f.subs[key] = true
	return nil
}

func (f *fakeSubscriptions) Unsubscribe(_ context.Context, subscriber, channel bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]bson.ObjectID{subscriber, channel}
	if !f.subs[key] {
		return database.ErrNotFound
	}
	delete(f.subs, key)
	return nil
}

func (f *fakeSubscriptions) Subscribers(_ context.Context, channel bson.ObjectID, _ utils.PageQuery) (utils.Page[models.Subscriber], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []models.Subscriber
	for key := range f.subs {
		if key[1] == channel {
			items = append(items, models.Subscriber{Owner: models.Owner{ID: key[0]}})
		}
	}
	return pageOf(items), nil
}

type fakeActionLogs struct {
	filters []models.ActionLogFilter
	entries []models.ActionLog
}

func (f *fakeActionLogs) List(_ context.Context, filter models.ActionLogFilter, _ utils.PageQuery) (utils.Page[models.ActionLog], error) {
	f.filters = append(f.filters, filter)
	return pageOf(f.entries), nil
}

type fakeMedia struct {
	mu        sync.Mutex
	uploads   []string
	discarded []string
	fail      error
	duration  float64
}

func (f *fakeMedia) asset(fh *multipart.FileHeader, folder string) (media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return media.Asset{}, f.fail
	}
	url := fmt.Sprintf("https://cdn.test/%s/%d-%s", folder, len(f.uploads), fh.Filename)
	f.uploads = append(f.uploads, url)
	return media.Asset{URL: url, Key: folder + "/" + fh.Filename, Duration: f.duration}, nil
}

func (f *fakeMedia) UploadImage(_ context.Context, fh *multipart.FileHeader, folder string) (media.Asset, error) {
	return f.asset(fh, folder)
}

func (f *fakeMedia) UploadVideo(_ context.Context, fh *multipart.FileHeader, folder string) (media.Asset, error) {
	return f.asset(fh, folder)
}

func (f *fakeMedia) UploadVideoWithThumbnail(_ context.Context, video, thumbnail *multipart.FileHeader, folder string) (media.Asset, media.Asset, error) {
	v, err := f.asset(video, folder+"/videos")
	if err != nil {
		return media.Asset{}, media.Asset{}, err
	}
	t, err := f.asset(thumbnail, folder+"/thumbnails")
	if err != nil {
		return media.Asset{}, media.Asset{}, err
	}
	return v, t, nil
}

func (f *fakeMedia) DiscardURL(_ context.Context, url string) {
	if url == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = append(f.discarded, url)
}

type fakeLikeCounts struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (f *fakeLikeCounts) key(kind models.ResourceType, id bson.ObjectID) string {
	return string(kind) + ":" + id.Hex()
}

func (f *fakeLikeCounts) Get(_ context.Context, kind models.ResourceType, id bson.ObjectID) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.counts[f.key(kind, id)]
	return n, ok
}

func (f *fakeLikeCounts) Set(_ context.Context, kind models.ResourceType, id bson.ObjectID, count int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[f.key(kind, id)] = count
}

func (f *fakeLikeCounts) Invalidate(_ context.Context, kind models.ResourceType, id bson.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counts, f.key(kind, id))
}

type fakeMailer struct {
	to, url string
	err     error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	f.to, f.url = to, resetURL
	return f.err
}
