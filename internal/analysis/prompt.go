package analysis

const systemPrompt = "You are an expert resume analyst and career advisor. Analyze resumes objectively and provide actionable insights."

const promptTemplate = `Analyze the following resume and provide a comprehensive analysis in JSON format. Extract and evaluate:

1. ATS Score (0-100): Rate how well the resume would pass through Applicant Tracking Systems
2. Skills: List all technical and soft skills with categories (Technical, Soft, Language, etc.), proficiency level, and relevance score (0-100)
3. Strengths: List 5-7 key strengths
4. Weaknesses: List 3-5 areas for improvement
5. Recommendations: Provide 5-7 actionable recommendations to improve the resume
6. Experience: Extract years of experience, job roles, and industries
7. Education: Extract degrees, institutions, and graduation years
8. Certifications: List all certifications
9. Languages: List all languages mentioned
10. Summary: Provide a 2-3 sentence professional summary

Resume Text:
%s

Return ONLY valid JSON in this exact format:
{
  "atsScore": 85,
  "skills": [
    {
      "name": "JavaScript",
      "category": "Technical",
      "proficiency": "Advanced",
      "relevance": 95
    }
  ],
  "strengths": ["Strong technical background", "Relevant certifications"],
  "weaknesses": ["Limited leadership experience", "Gap in employment"],
  "recommendations": ["Add quantifiable achievements", "Include more keywords"],
  "experience": {
    "years": 5,
    "roles": ["Software Engineer", "Senior Developer"],
    "industries": ["Technology", "Finance"]
  },
  "education": [
    {
      "degree": "Bachelor of Science in Computer Science",
      "institution": "University Name",
      "year": "2018"
    }
  ],
  "certifications": ["AWS Certified", "Google Cloud Professional"],
  "languages": ["English", "Spanish"],
  "summary": "Experienced software engineer with 5+ years..."
}`

// Temperature keeps the output close to deterministic.
const Temperature float32 = 0.3
