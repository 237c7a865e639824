package matrix

import (
	"fmt"
	"sort"

	"curricore/pkg/domain"
)

const labelLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SortObjectives returns the objectives in display order: fixed category
// order first, then creation order within a category.
func SortObjectives(objectives []domain.MoetObjective) []domain.MoetObjective {
	out := append([]domain.MoetObjective(nil), objectives...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := domain.CategoryRank(out[i].Category), domain.CategoryRank(out[j].Category)
		if ri != rj {
			return ri < rj
		}
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ObjectiveLabels derives the positional letter label for every objective.
// Labels run A..Z then A1, B1, and so on; they are never stored, so
// inserting or deleting an objective relabels everything after it.
func ObjectiveLabels(objectives []domain.MoetObjective) map[string]string {
	sorted := SortObjectives(objectives)
	out := make(map[string]string, len(sorted))
	for i, obj := range sorted {
		out[obj.ID] = labelAt(i)
	}
	return out
}

func labelAt(index int) string {
	letter := labelLetters[index%len(labelLetters)]
	round := index / len(labelLetters)
	if round == 0 {
		return string(letter)
	}
	return fmt.Sprintf("%c%d", letter, round)
}
