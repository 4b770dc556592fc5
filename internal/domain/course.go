package domain

// Courses is the fixed catalog of course ids to display names. It is
// never mutated at runtime; enrollment validates against it and copies
// the display name into the enrollment document.
var Courses = map[string]string{
	"python":        "Python Programming",
	"java":          "Java Development",
	"javascript":    "JavaScript Mastery",
	"fullstack":     "Full-Stack Web Development",
	"react":         "React Framework",
	"datascience":   "Data Science Fundamentals",
	"mobile":        "Mobile App Development",
	"cloud":         "Cloud Computing & DevOps",
	"cybersecurity": "Cybersecurity Essentials",
	"uiux":          "UI/UX Design",
	"ai":            "AI & Machine Learning",
	"blockchain":    "Blockchain Development",
}

// CourseName returns the catalog display name for a course id.
func CourseName(courseID string) (string, bool) {
	name, ok := Courses[courseID]
	return name, ok
}
