package service

import (
	"github.com/niklvrr/ReviewerRotation/internal/domain"
)

// SelectNext выбирает наименее загруженного доступного ревьюера.
// При равной загрузке побеждает зарегистрированный раньше, при равном
// createdAt сохраняется порядок входного среза. Пустой результат не ошибка.
func SelectNext(reviewers []*domain.Reviewer, tagId *string, excludeId *string) (*domain.Reviewer, bool) {
	var next *domain.Reviewer
	for _, r := range reviewers {
		if !eligible(r, tagId, excludeId) {
			continue
		}
		if next == nil || fairer(r, next) {
			next = r
		}
	}
	return next, next != nil
}

// SelectNextExcluding то же правило, но без текущего ревьюера. Если исключение
// опустошает минимальный ярус, выбор уходит на следующий по загрузке ярус.
func SelectNextExcluding(reviewers []*domain.Reviewer, tagId *string, excludeId string) (*domain.Reviewer, bool) {
	return SelectNext(reviewers, tagId, &excludeId)
}

func eligible(r *domain.Reviewer, tagId *string, excludeId *string) bool {
	if r == nil || r.IsAbsent {
		return false
	}
	if excludeId != nil && r.Id == *excludeId {
		return false
	}
	if tagId != nil && !r.HasTag(*tagId) {
		return false
	}
	return true
}

// fairer строго лучше: меньше назначений, затем раньше создан
func fairer(a, b *domain.Reviewer) bool {
	if a.AssignmentCount != b.AssignmentCount {
		return a.AssignmentCount < b.AssignmentCount
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// MinCount минимальная загрузка по всему пулу, 0 для пустого пула
func MinCount(reviewers []*domain.Reviewer) int {
	minCount := 0
	for i, r := range reviewers {
		if i == 0 || r.AssignmentCount < minCount {
			minCount = r.AssignmentCount
		}
	}
	return minCount
}

// ReturningCount мода загрузки среди доступных ревьюеров вместе с возвращающимся.
// При равной частоте берётся большее значение.
func ReturningCount(available []*domain.Reviewer, returning *domain.Reviewer) int {
	freq := make(map[int]int, len(available)+1)
	freq[returning.AssignmentCount]++
	for _, r := range available {
		if r.Id == returning.Id || r.IsAbsent {
			continue
		}
		freq[r.AssignmentCount]++
	}

	mode, best := returning.AssignmentCount, 0
	for count, n := range freq {
		if n > best || (n == best && count > mode) {
			mode, best = count, n
		}
	}
	return mode
}
