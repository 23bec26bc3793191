package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"lentera.id/elearning/internal/dto"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
	"lentera.id/elearning/pkg/apperror"
)

// leaderboardCacheTTL bounds how stale a cached page may get. The
// leaderboard is allowed to be eventually consistent; it is never a single
// atomic view.
const leaderboardCacheTTL = 30 * time.Second

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, userID uuid.UUID, boardType model.BoardType, limit, offset int) (*dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	progressRepo   repository.ProgressRepository
	completionRepo repository.CompletionRepository
	snapshotRepo   repository.SnapshotRepository
	redisClient    *redis.Client
	now            func() time.Time
}

func NewLeaderboardService(
	progressRepo repository.ProgressRepository,
	completionRepo repository.CompletionRepository,
	snapshotRepo repository.SnapshotRepository,
	redisClient *redis.Client,
) LeaderboardService {
	return &leaderboardService{
		progressRepo:   progressRepo,
		completionRepo: completionRepo,
		snapshotRepo:   snapshotRepo,
		redisClient:    redisClient,
		now:            time.Now,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, userID uuid.UUID, boardType model.BoardType, limit, offset int) (*dto.LeaderboardResponse, error) {
	if !boardType.IsValid() {
		return nil, fmt.Errorf("unknown leaderboard type %q: %w", boardType, apperror.ErrInvalidInput)
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%d:%d:%s", boardType, limit, offset, userID)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	var (
		response *dto.LeaderboardResponse
		err      error
	)
	if boardType == model.BoardTypeGlobal {
		response, err = s.globalLeaderboard(userID, limit, offset)
	} else {
		response, err = s.weeklyLeaderboard(userID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, response)
	return response, nil
}

func (s *leaderboardService) globalLeaderboard(userID uuid.UUID, limit, offset int) (*dto.LeaderboardResponse, error) {
	page, err := s.progressRepo.ListTopByXP(limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.progressRepo.CountAll()
	if err != nil {
		return nil, err
	}

	yesterday := StartOfDay(s.now()).AddDate(0, 0, -1)
	response := &dto.LeaderboardResponse{
		Type:    string(model.BoardTypeGlobal),
		Entries: make([]dto.LeaderboardEntry, 0, len(page)),
		Total:   total,
		Offset:  offset,
	}

	for i, progress := range page {
		entry := dto.LeaderboardEntry{
			Rank:          offset + i + 1,
			UserID:        progress.UserID,
			XP:            progress.TotalXP,
			Level:         progress.Level,
			LevelTitle:    progress.LevelTitle,
			IsCurrentUser: progress.UserID == userID,
		}
		entry.RankChange, err = s.rankChange(progress.UserID, model.BoardTypeGlobal, yesterday, entry.Rank)
		if err != nil {
			return nil, err
		}
		if entry.IsCurrentUser {
			response.CurrentUserRank = entry.Rank
			entryCopy := entry
			response.CurrentUserEntry = &entryCopy
		}
		response.Entries = append(response.Entries, entry)
	}

	if response.CurrentUserEntry == nil {
		if err := s.resolveGlobalUser(userID, yesterday, response); err != nil {
			return nil, err
		}
	}

	return response, nil
}

// resolveGlobalUser computes the requester's rank when they are off-page:
// (count of users with strictly greater total XP) + 1.
func (s *leaderboardService) resolveGlobalUser(userID uuid.UUID, yesterday time.Time, response *dto.LeaderboardResponse) error {
	progress, err := s.progressRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if progress == nil {
		return fmt.Errorf("progress for user %s: %w", userID, apperror.ErrNotFound)
	}

	ahead, err := s.progressRepo.CountWithXPGreaterThan(progress.TotalXP)
	if err != nil {
		return err
	}

	entry := dto.LeaderboardEntry{
		Rank:          int(ahead) + 1,
		UserID:        userID,
		XP:            progress.TotalXP,
		Level:         progress.Level,
		LevelTitle:    progress.LevelTitle,
		IsCurrentUser: true,
	}
	entry.RankChange, err = s.rankChange(userID, model.BoardTypeGlobal, yesterday, entry.Rank)
	if err != nil {
		return err
	}

	response.CurrentUserRank = entry.Rank
	response.CurrentUserEntry = &entry
	return nil
}

func (s *leaderboardService) weeklyLeaderboard(userID uuid.UUID, limit, offset int) (*dto.LeaderboardResponse, error) {
	weekStart := StartOfWeek(s.now())

	sums, err := s.completionRepo.ListXPSumsSince(weekStart, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.completionRepo.CountUsersSince(weekStart)
	if err != nil {
		return nil, err
	}

	// One IN query for the page's level/title columns instead of a lookup
	// per row.
	userIDs := make([]uuid.UUID, 0, len(sums))
	for _, sum := range sums {
		userIDs = append(userIDs, sum.UserID)
	}
	progresses, err := s.progressRepo.ListByUserIDs(userIDs)
	if err != nil {
		return nil, err
	}
	progressByID := make(map[uuid.UUID]model.UserProgress, len(progresses))
	for _, p := range progresses {
		progressByID[p.UserID] = p
	}

	yesterday := StartOfDay(s.now()).AddDate(0, 0, -1)
	response := &dto.LeaderboardResponse{
		Type:    string(model.BoardTypeWeekly),
		Entries: make([]dto.LeaderboardEntry, 0, len(sums)),
		Total:   total,
		Offset:  offset,
	}

	for i, sum := range sums {
		entry := dto.LeaderboardEntry{
			Rank:          offset + i + 1,
			UserID:        sum.UserID,
			XP:            sum.XP,
			IsCurrentUser: sum.UserID == userID,
		}
		if progress, ok := progressByID[sum.UserID]; ok {
			entry.Level = progress.Level
			entry.LevelTitle = progress.LevelTitle
		}
		entry.RankChange, err = s.rankChange(sum.UserID, model.BoardTypeWeekly, yesterday, entry.Rank)
		if err != nil {
			return nil, err
		}
		if entry.IsCurrentUser {
			response.CurrentUserRank = entry.Rank
			entryCopy := entry
			response.CurrentUserEntry = &entryCopy
		}
		response.Entries = append(response.Entries, entry)
	}

	if response.CurrentUserEntry == nil {
		if err := s.resolveWeeklyUser(userID, weekStart, yesterday, response); err != nil {
			return nil, err
		}
	}

	return response, nil
}

// resolveWeeklyUser computes the requester's weekly rank off-page: their
// position in the full sorted weekly list, ties included, so the fallback
// agrees with the rank they would carry as a page entry and with the rank
// the snapshot job records. A user who earned nothing this week has no
// weekly rank at all.
func (s *leaderboardService) resolveWeeklyUser(userID uuid.UUID, weekStart, yesterday time.Time, response *dto.LeaderboardResponse) error {
	weeklyXP, err := s.completionRepo.SumXPSince(userID, weekStart)
	if err != nil {
		return err
	}
	if weeklyXP == 0 {
		return nil
	}

	ahead, err := s.completionRepo.CountUsersRankedAboveSince(weekStart, weeklyXP, userID)
	if err != nil {
		return err
	}

	entry := dto.LeaderboardEntry{
		Rank:          int(ahead) + 1,
		UserID:        userID,
		XP:            weeklyXP,
		IsCurrentUser: true,
	}
	if progress, err := s.progressRepo.GetByUserID(userID); err != nil {
		return err
	} else if progress != nil {
		entry.Level = progress.Level
		entry.LevelTitle = progress.LevelTitle
	}
	entry.RankChange, err = s.rankChange(userID, model.BoardTypeWeekly, yesterday, entry.Rank)
	if err != nil {
		return err
	}

	response.CurrentUserRank = entry.Rank
	response.CurrentUserEntry = &entry
	return nil
}

// rankChange diffs the current rank against yesterday's snapshot. No
// snapshot means the user was not on yesterday's board: direction "new".
func (s *leaderboardService) rankChange(userID uuid.UUID, boardType model.BoardType, yesterday time.Time, currentRank int) (dto.RankChange, error) {
	snapshot, err := s.snapshotRepo.Get(userID, yesterday, boardType)
	if err != nil {
		return dto.RankChange{}, err
	}
	if snapshot == nil {
		return dto.RankChange{Direction: "new"}, nil
	}

	delta := snapshot.Rank - currentRank
	switch {
	case delta > 0:
		return dto.RankChange{Direction: "up", Delta: delta}, nil
	case delta < 0:
		return dto.RankChange{Direction: "down", Delta: -delta}, nil
	default:
		return dto.RankChange{Direction: "same"}, nil
	}
}

func (s *leaderboardService) cacheGet(ctx context.Context, key string) *dto.LeaderboardResponse {
	if s.redisClient == nil {
		return nil
	}
	payload, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var response dto.LeaderboardResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil
	}
	return &response
}

func (s *leaderboardService) cacheSet(ctx context.Context, key string, response *dto.LeaderboardResponse) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	s.redisClient.Set(ctx, key, payload, leaderboardCacheTTL)
}
