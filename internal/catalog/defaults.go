package catalog

import "github.com/terra-clan/pathfinder/internal/models"

// DefaultLearningPaths returns the built-in learning path catalog
func DefaultLearningPaths() []*models.LearningPath {
	return []*models.LearningPath{
		{
			ID:             "1",
			Title:          "Data Science Fundamentals",
			Description:    "Master the core concepts of data analysis, statistics, and machine learning to start your data science journey.",
			DurationMonths: 3,
			Level:          models.LevelBeginner,
			CourseCount:    8,
			Category:       "Data Science",
			ImageURL:       "https://images.pexels.com/photos/669615/pexels-photo-669615.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
		},
		{
			ID:             "2",
			Title:          "UX/UI Design Immersive",
			Description:    "Learn user-centered design processes, wireframing, prototyping, and usability testing to create engaging experiences.",
			DurationMonths: 4,
			Level:          models.LevelIntermediate,
			CourseCount:    12,
			Category:       "Design",
			ImageURL:       "https://images.pexels.com/photos/196644/pexels-photo-196644.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
		},
		{
			ID:             "3",
			Title:          "Full-Stack Web Development",
			Description:    "Build dynamic web applications with modern frameworks, covering both frontend and backend development.",
			DurationMonths: 6,
			Level:          models.LevelIntermediate,
			CourseCount:    15,
			Category:       "Development",
			ImageURL:       "https://images.pexels.com/photos/577585/pexels-photo-577585.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
		},
		{
			ID:             "4",
			Title:          "Product Management Essentials",
			Description:    "Learn to identify market opportunities, define product requirements, and lead cross-functional teams to deliver successful products.",
			DurationMonths: 3,
			Level:          models.LevelBeginner,
			CourseCount:    10,
			Category:       "Business",
			ImageURL:       "https://images.pexels.com/photos/3184360/pexels-photo-3184360.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
		},
		{
			ID:             "5",
			Title:          "Advanced Machine Learning",
			Description:    "Dive deep into neural networks, deep learning, and advanced ML algorithms to solve complex real-world problems.",
			DurationMonths: 5,
			Level:          models.LevelAdvanced,
			CourseCount:    12,
			Category:       "Data Science",
			ImageURL:       "https://images.pexels.com/photos/2599244/pexels-photo-2599244.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
		},
		{
			ID:             "6",
			Title:          "Mobile App Development",
			Description:    "Build native and cross-platform mobile applications for iOS and Android using modern frameworks and best practices.",
			DurationMonths: 4,
			Level:          models.LevelIntermediate,
			CourseCount:    9,
			Category:       "Development",
			ImageURL:       "https://images.pexels.com/photos/267507/pexels-photo-267507.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
		},
	}
}

// DefaultCareers returns the built-in career matches
func DefaultCareers() []*models.Career {
	return []*models.Career{
		{
			ID:          "1",
			Title:       "UX/UI Designer",
			MatchScore:  95,
			Salary:      "$75,000 - $120,000",
			GrowthRate:  "13% (Much faster than average)",
			Description: "Design digital products with a focus on user experience and interface design, creating intuitive and engaging experiences for users.",
			Skills:      []string{"User Research", "Wireframing", "Prototyping", "Visual Design", "Usability Testing"},
		},
		{
			ID:          "2",
			Title:       "Data Scientist",
			MatchScore:  87,
			Salary:      "$90,000 - $150,000",
			GrowthRate:  "22% (Much faster than average)",
			Description: "Analyze complex data sets to identify patterns and derive insights that drive business decisions and strategy.",
			Skills:      []string{"Statistics", "Machine Learning", "Python", "SQL", "Data Visualization"},
		},
		{
			ID:          "3",
			Title:       "Frontend Developer",
			MatchScore:  82,
			Salary:      "$70,000 - $130,000",
			GrowthRate:  "15% (Faster than average)",
			Description: "Build the user interface of websites and applications, focusing on creating responsive and interactive experiences.",
			Skills:      []string{"HTML/CSS", "JavaScript", "React", "Responsive Design", "Web Accessibility"},
		},
		{
			ID:          "4",
			Title:       "Product Manager",
			MatchScore:  79,
			Salary:      "$85,000 - $140,000",
			GrowthRate:  "10% (Faster than average)",
			Description: "Oversee the development of products, balancing business goals with user needs and technical constraints.",
			Skills:      []string{"Strategic Planning", "User Stories", "Market Research", "Agile Methodologies", "Stakeholder Management"},
		},
	}
}
