package simevents

import (
	"fmt"
	"log"
)

// verifyRankings checks the structural invariants of the returned ordering:
// scores non-increasing and ranks strictly ascending from 1.
func verifyRankings(rankings []RankingEntry) error {
	log.Println("🔍 Verifying rankings...")

	if len(rankings) == 0 {
		log.Println("⚠️  No ranking entries to verify (no profiles crossed the marketplace threshold)")
		return nil
	}

	for i, entry := range rankings {
		if entry.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, want %d", i, entry.Rank, i+1)
		}
		if i > 0 && entry.Score > rankings[i-1].Score {
			return fmt.Errorf("rankings not sorted: entry %d has higher score than entry %d", i, i-1)
		}
	}

	displayTopEntries(rankings)
	log.Println("✅ Ranking verification completed")
	return nil
}

// displayTopEntries shows the head of the ordering.
func displayTopEntries(rankings []RankingEntry) {
	topN := 10
	if len(rankings) < topN {
		topN = len(rankings)
	}

	log.Printf("🏆 Top %d profiles:", topN)
	for i := 0; i < topN; i++ {
		entry := rankings[i]
		log.Printf("   %d. %s - Score: %d", entry.Rank, entry.Username, entry.Score)
	}
}
