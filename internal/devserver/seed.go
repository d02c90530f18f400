package devserver

import (
	"fmt"
	"time"

	"github.com/noah-isme/academic-tracker/internal/models"
)

// placeholderImage is a 1x1 PNG used by the seeded posts.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// Demo accounts. All of them share the configured seed password.
var demoAccounts = []account{
	{Cedula: "V-1000", Email: "admin@tracker.test", GivenName: "Marta", FamilyName: "Rivas", Role: models.RoleAdmin},
	{Cedula: "V-2001", Email: "ana.perez@tracker.test", GivenName: "Ana", FamilyName: "Pérez", Role: models.RoleProfessor},
	{Cedula: "V-2002", Email: "luis.gomez@tracker.test", GivenName: "Luis", FamilyName: "Gómez", Role: models.RoleProfessor},
	{Cedula: "V-2003", Email: "carla.mendez@tracker.test", GivenName: "Carla", FamilyName: "Méndez", Role: models.RoleProfessor},
	{Cedula: "V-2004", Email: "jorge.salas@tracker.test", GivenName: "Jorge", FamilyName: "Salas", Role: models.RoleProfessor},
	{Cedula: "V-3000", Email: "secretaria@tracker.test", GivenName: "Rosa", FamilyName: "Lara", Role: models.RoleSecretary},
	{
		Cedula: "30111222", Email: "estudiante@tracker.test", GivenName: "Diego", FamilyName: "Torres", Role: models.RoleStudent,
		BirthDate: time.Date(2002, time.April, 9, 0, 0, 0, 0, time.UTC), Phone: "0414-5550000", Address: "Av. Principal 12", Sex: "M",
	},
}

const demoPostCount = 12

func seedDemoData(st *store, password string) error {
	if password == "" {
		return fmt.Errorf("devserver: seed password must not be empty")
	}
	joined := st.now().UTC().AddDate(-1, 0, 0)
	for _, a := range demoAccounts {
		a.CreatedAt = joined
		if _, err := st.addAccount(a, password); err != nil {
			return fmt.Errorf("seed account %s: %w", a.Cedula, err)
		}
	}
	for i := 1; i <= demoPostCount; i++ {
		st.createPost(
			fmt.Sprintf("Anuncio %d", i),
			fmt.Sprintf("Contenido del anuncio número %d.", i),
			placeholderImage,
		)
	}
	return nil
}
