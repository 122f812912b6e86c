// Package seed holds the data a fresh device starts from.
package seed

import (
	"fmt"
	"strconv"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/auth"
	"github.com/RubachokBoss/clubtrack/internal/config"
	"github.com/RubachokBoss/clubtrack/internal/models"
)

const AdminID = "admin-0"

func Classes() []models.ClassLevel {
	return []models.ClassLevel{
		{ID: "av1", Club: models.ClubAventuriers, Name: "Petit Agneau", Age: 4, Icon: models.EmojiIcon("🐑")},
		{ID: "av2", Club: models.ClubAventuriers, Name: "Castor Enthousiaste", Age: 5, Icon: models.EmojiIcon("🦫")},
		{ID: "av3", Club: models.ClubAventuriers, Name: "Abeille Active", Age: 6, Icon: models.EmojiIcon("🐝")},
		{ID: "av4", Club: models.ClubAventuriers, Name: "Rayon de Soleil", Age: 7, Icon: models.EmojiIcon("☀️")},
		{ID: "av5", Club: models.ClubAventuriers, Name: "Constructeur", Age: 8, Icon: models.EmojiIcon("🛠️")},
		{ID: "av6", Club: models.ClubAventuriers, Name: "Main Utile", Age: 9, Icon: models.EmojiIcon("✋")},

		{ID: "ex1", Club: models.ClubExplorateurs, Name: "Ami", Age: 10, Icon: models.EmojiIcon("🤝")},
		{ID: "ex2", Club: models.ClubExplorateurs, Name: "Compagnon", Age: 11, Icon: models.EmojiIcon("🧭")},
		{ID: "ex3", Club: models.ClubExplorateurs, Name: "Explorateur", Age: 12, Icon: models.EmojiIcon("⛺")},
		{ID: "ex4", Club: models.ClubExplorateurs, Name: "Pionnier", Age: 13, Icon: models.EmojiIcon("🔥")},
		{ID: "ex5", Club: models.ClubExplorateurs, Name: "Voyageur", Age: 14, Icon: models.EmojiIcon("🗺️")},
		{ID: "ex6", Club: models.ClubExplorateurs, Name: "Guide", Age: 15, Icon: models.EmojiIcon("🌟")},
	}
}

func Logos() []models.ClubLogo {
	return []models.ClubLogo{
		{Club: models.ClubAventuriers, Logo: "/logos/aventuriers.png"},
		{Club: models.ClubExplorateurs, Logo: "/logos/explorateurs.png"},
	}
}

// Admin builds the ADMIN account that must always exist.
func Admin(cfg config.SeedConfig, v auth.Verifier) (models.Instructor, error) {
	hash, err := v.Hash(cfg.AdminPassword)
	if err != nil {
		return models.Instructor{}, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return models.Instructor{
		ID:           AdminID,
		FullName:     cfg.AdminFullName,
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}, nil
}

func Sessions() []models.Session {
	return []models.Session{
		{
			ID:      "s1",
			Club:    models.ClubAventuriers,
			ClassID: "av1",
			Number:  1,
			Subjects: []models.Subject{
				{
					ID:            "sub1",
					Name:          "La Création",
					Prerequisites: "Comprendre que Dieu est le Créateur de tout.",
					Content:       "<h2>Leçon 1: Dieu est Créateur</h2><p>Dieu a fait le ciel, la terre, et tout ce qu'ils contiennent parce qu'il nous aime.</p>",
				},
				{
					ID:            "sub2",
					Name:          "Les Animaux",
					Prerequisites: "Découvrir la diversité des animaux créés.",
					Content:       "<h2>Leçon 2: Les Animaux de Dieu</h2><p>Dieu a créé les animaux, du plus petit insecte au plus grand éléphant.</p>",
				},
			},
			AvailabilityDate: "2024-09-01",
		},
	}
}

var (
	firstNames = []string{"Jean", "Marie", "Alice", "Lucas", "Léa", "Thomas", "Emma", "Hugo", "Chloé", "Nathan", "Zoe", "Gabriel", "Mila", "Arthur", "Jade", "Enzo"}
	lastNames  = []string{"Dupont", "Curie", "Martin", "Bernard", "Petit", "Roux", "Durand", "Leroy", "Simon", "Michel", "Lefebvre", "Garcia", "David", "Bonnet", "Morel", "Moret"}
)

// DemoStudents generates perClass students for every default class. The
// first student of each class has already chosen a password; the others
// still hold a temporary code.
func DemoStudents(perClass int, now time.Time) []models.Student {
	var students []models.Student
	year := now.Year()

	for _, cls := range Classes() {
		for i := 0; i < perClass; i++ {
			last := lastNames[(i*3+cls.Age)%len(lastNames)]
			birth := strconv.Itoa(year-cls.Age) + "-05-15"

			s := models.Student{
				ID:         fmt.Sprintf("st-%s-%d", cls.ID, i),
				FullName:   firstNames[(i+cls.Age)%len(firstNames)] + " " + last,
				BirthDate:  birth,
				Age:        models.AgeFromBirthDate(birth, now),
				ClassID:    cls.ID,
				Address:    "123 Rue de la Jeunesse, 75000 Paris",
				MotherName: "Maman " + last,
				FatherName: "Papa " + last,
				EmergencyContacts: []models.EmergencyContact{
					{Name: "Oncle " + last, Phone: "06 12 34 56 78", Relationship: "Oncle"},
					{Name: "Tante " + last, Phone: "07 98 76 54 32", Relationship: "Tante"},
				},
			}
			if i%5 == 0 {
				s.Diseases = []string{"Asthme"}
			}
			if i%4 == 0 {
				s.Allergies = []string{"Arachides"}
			}
			if i%6 == 0 {
				s.Medications = []string{"Ventoline"}
			}
			if i == 0 {
				s.PasswordChanged = true
			} else {
				s.TemporaryPassword = fmt.Sprintf("MJA-%04d", 1000+i+cls.Age)
			}

			students = append(students, s)
		}
	}
	return students
}
