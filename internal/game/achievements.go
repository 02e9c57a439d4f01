package game

// Achievement is a one-way milestone. Check must be a pure function of the snapshot.
type Achievement struct {
	ID          string
	Title       Text
	Description Text
	Icon        string
	Check       func(Snapshot) bool
}

var Achievements = []Achievement{
	{
		ID:          "industrial_titan",
		Title:       Text{LangEN: "Industrial Titan", LangID: "Raja Industri"},
		Description: Text{LangEN: "Reach $10,000,000 in liquid cash reserves", LangID: "Capai cadangan kas cair senilai $10.000.000"},
		Icon:        "diamond",
		Check:       func(s Snapshot) bool { return s.Cash >= 10_000_000 },
	},
	{
		ID:          "renewable_pioneer",
		Title:       Text{LangEN: "Renewable Pioneer", LangID: "Pelopor Terbarukan"},
		Description: Text{LangEN: "Deploy 20 GW of renewable capacity to lead the energy transition", LangID: "Operasikan 20 GW kapasitas terbarukan untuk memimpin transisi energi"},
		Icon:        "wind",
		Check:       func(s Snapshot) bool { return s.RenewableCapacity >= 20 },
	},
	{
		ID:          "sustainability_giant",
		Title:       Text{LangEN: "Sustainability Giant", LangID: "Raksasa Keberlanjutan"},
		Description: Text{LangEN: "Reach 50 GW of renewable energy capacity", LangID: "Capai 50 GW kapasitas energi terbarukan"},
		Icon:        "recycle",
		Check:       func(s Snapshot) bool { return s.RenewableCapacity >= 50 },
	},
	{
		ID:          "efficiency_master",
		Title:       Text{LangEN: "Efficiency Master", LangID: "Empu Efisiensi"},
		Description: Text{LangEN: "Optimize operations to produce 200,000 units of refined products", LangID: "Optimalkan operasi untuk memproduksi 200.000 unit produk olahan"},
		Icon:        "bolt",
		Check:       func(s Snapshot) bool { return s.RefinedProducts >= 200_000 },
	},
	{
		ID:          "public_favorite",
		Title:       Text{LangEN: "Public Favorite", LangID: "Favorit Publik"},
		Description: Text{LangEN: "Earn a legendary 95% approval rating through corporate responsibility", LangID: "Raih 95% tingkat persetujuan publik melalui tanggung jawab korporat"},
		Icon:        "star",
		Check:       func(s Snapshot) bool { return s.Approval >= 95 },
	},
	{
		ID:          "net_zero_hero",
		Title:       Text{LangEN: "Net Zero Hero", LangID: "Pahlawan Net-Zero"},
		Description: Text{LangEN: "50+ GW Renewable capacity with under 5% pollution", LangID: "50+ GW energi hijau dengan polusi di bawah 5%"},
		Icon:        "globe",
		Check:       func(s Snapshot) bool { return s.RenewableCapacity >= 50 && s.Pollution <= 5 },
	},
	{
		ID:          "green_monarch",
		Title:       Text{LangEN: "Green Monarch", LangID: "Penguasa Hijau"},
		Description: Text{LangEN: "Reach a massive 100 GW of renewable capacity", LangID: "Raih kapasitas energi hijau masif sebesar 100 GW"},
		Icon:        "crown",
		Check:       func(s Snapshot) bool { return s.RenewableCapacity >= 100 },
	},
	{
		ID:          "eco_industrialist",
		Title:       Text{LangEN: "Eco-Industrialist", LangID: "Industrialis Eko"},
		Description: Text{LangEN: "10+ GW renewables and achieve exactly 0% pollution", LangID: "10+ GW energi hijau dan capai polusi tepat 0%"},
		Icon:        "seedling",
		Check:       func(s Snapshot) bool { return s.RenewableCapacity >= 10 && s.Pollution == 0 },
	},
	{
		ID:          "scholar",
		Title:       Text{LangEN: "Petro-Scholar", LangID: "Pakar Perminyakan"},
		Description: Text{LangEN: "Reach 100 points of industrial knowledge", LangID: "Raih 100 poin wawasan industri"},
		Icon:        "books",
		Check:       func(s Snapshot) bool { return s.Knowledge >= 100 },
	},
	{
		ID:          "tech_visionary",
		Title:       Text{LangEN: "Tech Visionary", LangID: "Visioner Teknologi"},
		Description: Text{LangEN: "All industrial systems upgraded to Level 3+", LangID: "Tingkatkan semua sistem industri ke Level 3+"},
		Icon:        "tools",
		Check:       func(s Snapshot) bool { return allUpgradesAtLeast(s, 3) },
	},
	{
		ID:          "master_strategist",
		Title:       Text{LangEN: "Master Strategist", LangID: "Ahli Strategi"},
		Description: Text{LangEN: "Guide your company successfully until the year 2035", LangID: "Pimpin perusahaan Anda dengan sukses hingga tahun 2035"},
		Icon:        "chess",
		Check:       func(s Snapshot) bool { return s.Year >= 2035 },
	},
	{
		ID:          "tech_demigod",
		Title:       Text{LangEN: "Tech Demigod", LangID: "Semi-Dewa Teknologi"},
		Description: Text{LangEN: "All industrial systems upgraded to Level 5+", LangID: "Tingkatkan semua sistem industri ke Level 5+"},
		Icon:        "dna",
		Check:       func(s Snapshot) bool { return allUpgradesAtLeast(s, 5) },
	},
	{
		ID:          "treasury_overlord",
		Title:       Text{LangEN: "Treasury Overlord", LangID: "Penguasa Perbendaharaan"},
		Description: Text{LangEN: "Reach a legendary fortune of $100,000,000", LangID: "Raih kekayaan legendaris senilai $100.000.000"},
		Icon:        "bank",
		Check:       func(s Snapshot) bool { return s.Cash >= 100_000_000 },
	},
	{
		ID:          "pure_skies",
		Title:       Text{LangEN: "Pure Skies", LangID: "Langit Murni"},
		Description: Text{LangEN: "Produce 100,000 units of refined products with 0% pollution", LangID: "Produksi 100.000 unit produk olahan dengan polusi 0%"},
		Icon:        "cloud",
		Check:       func(s Snapshot) bool { return s.RefinedProducts >= 100_000 && s.Pollution == 0 },
	},
	{
		ID:          "deep_well_master",
		Title:       Text{LangEN: "Deep Well Master", LangID: "Empu Sumur Dalam"},
		Description: Text{LangEN: "Upgrade Turbo Drills to Level 8", LangID: "Tingkatkan Mata Bor Turbo ke Level 8"},
		Icon:        "hole",
		Check:       func(s Snapshot) bool { return s.Level(UpgradeDrill) >= 8 },
	},
	{
		ID:          "infinite_intellect",
		Title:       Text{LangEN: "Infinite Intellect", LangID: "Intelek Tak Terbatas"},
		Description: Text{LangEN: "Reach 500 points of industrial knowledge", LangID: "Raih 500 poin wawasan industri"},
		Icon:        "brain",
		Check:       func(s Snapshot) bool { return s.Knowledge >= 500 },
	},
}

func allUpgradesAtLeast(s Snapshot, level int) bool {
	for _, l := range s.Upgrades {
		if l < level {
			return false
		}
	}
	return true
}

func AchievementByID(id string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// EvaluateAchievements returns ids, in catalog order, whose check passes for s
// and that are not already in unlocked. It never modifies unlocked.
func EvaluateAchievements(s Snapshot, unlocked map[string]struct{}) []string {
	var out []string
	for _, a := range Achievements {
		if _, ok := unlocked[a.ID]; ok {
			continue
		}
		if a.Check(s) {
			out = append(out, a.ID)
		}
	}
	return out
}
